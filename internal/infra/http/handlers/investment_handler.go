package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

type InvestmentHandler struct {
	Store storage.Storage
}

func NewInvestmentHandler(store storage.Storage) *InvestmentHandler {
	return &InvestmentHandler{Store: store}
}

type CreateInvestmentRequest struct {
	FundName        string    `json:"fund_name"`
	FundDescription string    `json:"fund_description"`
	Amount          float64   `json:"amount"`
	InvestmentDate  time.Time `json:"investment_date"`
}

// HandleCreate writes the holding for the authenticated user only. The portal
// never creates on behalf of somebody else, whatever the body says.
func (h *InvestmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	inv, err := entity.NewInvestment(sess.UserID, req.FundName, req.FundDescription, req.Amount, req.InvestmentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.CreateInvestment(r.Context(), inv); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create investment")
		return
	}

	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvestmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	investments, err := h.Store.GetInvestmentsByUserID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch investments")
		return
	}

	writeJSON(w, http.StatusOK, investments)
}

func (h *InvestmentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd entity.InvestmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	inv, err := h.Store.UpdateInvestment(r.Context(), id, upd)
	if err != nil {
		writeUseCaseError(w, err, "Failed to update investment")
		return
	}

	writeJSON(w, http.StatusOK, inv)
}
