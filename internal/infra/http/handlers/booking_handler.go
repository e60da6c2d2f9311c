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

type BookingHandler struct {
	Store storage.Storage
}

func NewBookingHandler(store storage.Storage) *BookingHandler {
	return &BookingHandler{Store: store}
}

type CreateBookingRequest struct {
	LeadID      string    `json:"lead_id"`
	UserID      string    `json:"user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
	Type        string    `json:"type"`
	MeetingLink string    `json:"meeting_link"`
	Notes       string    `json:"notes"`
}

// HandleCreate is public: leads book their consultation from the landing page
// before they have a login. No overlap check against existing slots.
func (h *BookingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	booking, err := entity.NewBooking(req.LeadID, req.UserID, req.ScheduledAt, req.Duration, req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	booking.MeetingLink = req.MeetingLink
	booking.Notes = req.Notes

	if err := h.Store.CreateBooking(r.Context(), booking); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	middleware.RecordBookingCreated()
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	bookings, err := h.Store.GetBookings(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

// HandleListMine lists the logged-in user's own bookings for the portal.
func (h *BookingHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookings, err := h.Store.GetBookingsByUserID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd entity.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	booking, err := h.Store.UpdateBooking(r.Context(), id, upd)
	if err != nil {
		writeUseCaseError(w, err, "Failed to update booking")
		return
	}

	writeJSON(w, http.StatusOK, booking)
}
