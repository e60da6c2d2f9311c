package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(amount float64) (string, error) {
	args := m.Called(amount)
	return args.String(0), args.Error(1)
}

func TestCreatePaymentIntentSuccess(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("CreatePaymentIntent", 25000.0).Return("pi_123_secret_456", nil)

	h := NewPaymentHandler(gateway)

	raw, _ := json.Marshal(map[string]float64{"amount": 25000})
	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.HandleCreateIntent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pi_123_secret_456", resp["clientSecret"])

	gateway.AssertExpectations(t)
}

func TestCreatePaymentIntentUnconfigured(t *testing.T) {
	h := NewPaymentHandler(nil)

	raw, _ := json.Marshal(map[string]float64{"amount": 25000})
	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.HandleCreateIntent(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestCreatePaymentIntentRejectsNonPositiveAmount(t *testing.T) {
	gateway := new(MockGateway)
	h := NewPaymentHandler(gateway)

	for _, amount := range []float64{0, -50} {
		raw, _ := json.Marshal(map[string]float64{"amount": amount})
		req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		h.HandleCreateIntent(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything)
}

func TestCreatePaymentIntentGatewayError(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("CreatePaymentIntent", 100.0).Return("", assert.AnError)

	h := NewPaymentHandler(gateway)

	raw, _ := json.Marshal(map[string]float64{"amount": 100})
	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.HandleCreateIntent(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error creating payment intent")
}
