package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/pecapital-crm/internal/infra/http/middleware"
)

type PaymentGateway interface {
	CreatePaymentIntent(amount float64) (string, error)
}

// PaymentHandler delegates everything to the processor: no reconciliation,
// no webhooks, no retries. The frontend finishes the charge with the client
// secret.
type PaymentHandler struct {
	Gateway PaymentGateway // nil when STRIPE_SECRET_KEY is absent
}

func NewPaymentHandler(gateway PaymentGateway) *PaymentHandler {
	return &PaymentHandler{Gateway: gateway}
}

type CreatePaymentIntentRequest struct {
	Amount float64 `json:"amount"` // major units (rand)
}

func (h *PaymentHandler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	if h.Gateway == nil {
		writeError(w, http.StatusServiceUnavailable,
			"Payment processing is not configured. Please contact support.")
		return
	}

	var req CreatePaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	clientSecret, err := h.Gateway.CreatePaymentIntent(req.Amount)
	if err != nil {
		middleware.RecordIntegrationError("stripe")
		writeError(w, http.StatusInternalServerError, "Error creating payment intent: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}
