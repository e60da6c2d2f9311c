package stripe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2500050", r.PostForm.Get("amount")) // 25000.50 rand in cents
		assert.Equal(t, "zar", r.PostForm.Get("currency"))
		assert.Equal(t, "investment", r.PostForm.Get("metadata[type]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret_456"}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)

	secret, err := client.CreatePaymentIntent(25000.50)
	assert.NoError(t, err)
	assert.Equal(t, "pi_123_secret_456", secret)
}

func TestCreatePaymentIntentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)

	_, err := client.CreatePaymentIntent(100)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestCreatePaymentIntentMalformedErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream blew up"))
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)

	_, err := client.CreatePaymentIntent(100)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
