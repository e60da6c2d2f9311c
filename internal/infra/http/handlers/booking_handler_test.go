package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

func newBookingRouter(store storage.Storage) *chi.Mux {
	h := NewBookingHandler(store)

	r := chi.NewRouter()
	r.Post("/api/bookings", h.HandleCreate)
	r.Get("/api/bookings", h.HandleList)
	r.Put("/api/bookings/{id}", h.HandleUpdate)
	return r
}

func TestBookingCreateDefaults(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newBookingRouter(store)

	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	body, _ := json.Marshal(map[string]any{
		"lead_id":      "lead-1",
		"scheduled_at": when,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var booking entity.Booking
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, entity.BookingTypeConsultation, booking.Type)
	assert.Equal(t, 30, booking.Duration)
	assert.Equal(t, entity.BookingStatusScheduled, booking.Status)
	assert.True(t, when.Equal(booking.ScheduledAt))
}

func TestBookingSameSlotTwiceIsAccepted(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newBookingRouter(store)

	when := time.Now().Add(24 * time.Hour)
	body, _ := json.Marshal(map[string]any{"lead_id": "lead-1", "scheduled_at": when})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var bookings []entity.Booking
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 2)
}

func TestBookingRequiresSchedule(t *testing.T) {
	router := newBookingRouter(storage.NewMemoryStorage())

	body, _ := json.Marshal(map[string]any{"lead_id": "lead-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyBookingsScopedToSessionUser(t *testing.T) {
	store := storage.NewMemoryStorage()
	h := NewBookingHandler(store)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(store))
		r.Get("/api/my-bookings", h.HandleListMine)
	})

	mine, err := entity.NewBooking("", "user-1", time.Now().Add(24*time.Hour), 30, "")
	assert.NoError(t, err)
	assert.NoError(t, store.CreateBooking(context.Background(), mine))

	theirs, err := entity.NewBooking("", "user-2", time.Now().Add(48*time.Hour), 30, "")
	assert.NoError(t, err)
	assert.NoError(t, store.CreateBooking(context.Background(), theirs))

	cookie := sessionCookieFor(t, store, "user-1")
	req := httptest.NewRequest(http.MethodGet, "/api/my-bookings", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var bookings []entity.Booking
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 1)
	assert.Equal(t, "user-1", bookings[0].UserID)
}

func TestBookingUpdateStatus(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newBookingRouter(store)

	body, _ := json.Marshal(map[string]any{
		"lead_id":      "lead-1",
		"scheduled_at": time.Now().Add(24 * time.Hour),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created entity.Booking
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	upd, _ := json.Marshal(map[string]string{"status": entity.BookingStatusCompleted})
	req = httptest.NewRequest(http.MethodPut, "/api/bookings/"+created.ID, bytes.NewReader(upd))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated entity.Booking
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, entity.BookingStatusCompleted, updated.Status)
}
