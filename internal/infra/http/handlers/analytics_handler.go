package handlers

import (
	"net/http"

	"github.com/xavierca1/pecapital-crm/internal/storage"
)

// AnalyticsHandler exposes the three dashboard aggregates. All reads, no
// caching; the dashboard polls these a few times a minute at most.
type AnalyticsHandler struct {
	Store storage.Storage
}

func NewAnalyticsHandler(store storage.Storage) *AnalyticsHandler {
	return &AnalyticsHandler{Store: store}
}

func (h *AnalyticsHandler) HandleLeadStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetLeadStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch lead stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) HandleInvestmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetInvestmentStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch investment stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) HandleEmailStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetEmailStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch email stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
