package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	BookingTypeConsultation    = "consultation"
	BookingTypePortfolioReview = "portfolio_review"
	BookingTypeFollowUp        = "follow_up"

	BookingStatusScheduled = "scheduled"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "no_show"
)

type Booking struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"` // minutes
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBooking does not check the slot against existing bookings. Overlaps are
// resolved manually by the staff when confirming the meeting.
func NewBooking(leadID, userID string, scheduledAt time.Time, duration int, bookingType string) (*Booking, error) {
	if scheduledAt.IsZero() {
		return nil, errors.New("scheduled_at is required")
	}
	if duration <= 0 {
		duration = 30
	}
	if bookingType == "" {
		bookingType = BookingTypeConsultation
	}

	return &Booking{
		ID:          uuid.New().String(),
		LeadID:      leadID,
		UserID:      userID,
		ScheduledAt: scheduledAt,
		Duration:    duration,
		Type:        bookingType,
		Status:      BookingStatusScheduled,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

type BookingUpdate struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Duration    *int       `json:"duration"`
	Type        *string    `json:"type"`
	Status      *string    `json:"status"`
	MeetingLink *string    `json:"meeting_link"`
	Notes       *string    `json:"notes"`
}
