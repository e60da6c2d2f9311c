package storage

import (
	"context"
	"errors"

	"github.com/xavierca1/pecapital-crm/internal/entity"
)

// ErrNotFound is returned by every Get/Update that misses. Handlers map it to
// a 404 instead of a blanket 500.
var ErrNotFound = errors.New("record not found")

// LeadStats is the CRM funnel breakdown. "lost" is deliberately absent: the
// dashboard funnel widget only charts the live buckets.
type LeadStats struct {
	Total        int `json:"total"`
	New          int `json:"new"`
	Qualified    int `json:"qualified"`
	Consultation int `json:"consultation"`
	Closed       int `json:"closed"`
}

type InvestmentStats struct {
	TotalInvestments  int     `json:"totalInvestments"`
	TotalAmount       float64 `json:"totalAmount"`
	TotalCurrentValue float64 `json:"totalCurrentValue"`
	ActiveInvestors   int     `json:"activeInvestors"`
}

// EmailStats rates are percentages, 0 when nothing was sent.
type EmailStats struct {
	TotalSent    int     `json:"totalSent"`
	TotalOpened  int     `json:"totalOpened"`
	TotalClicked int     `json:"totalClicked"`
	OpenRate     float64 `json:"openRate"`
	ClickRate    float64 `json:"clickRate"`
}

// Storage is the single contract both backends implement. Switching between
// them is a pure substitution decided once at startup by DATABASE_URL.
type Storage interface {
	// Users
	GetUser(ctx context.Context, id string) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) error
	UpdateUserStripeInfo(ctx context.Context, userID, stripeCustomerID, stripeSubscriptionID string) (*entity.User, error)

	// Leads
	CreateLead(ctx context.Context, lead *entity.Lead) error
	GetLeads(ctx context.Context, limit, offset int) ([]*entity.Lead, error)
	GetLeadByID(ctx context.Context, id string) (*entity.Lead, error)
	UpdateLead(ctx context.Context, id string, upd entity.LeadUpdate) (*entity.Lead, error)

	// Investments
	CreateInvestment(ctx context.Context, inv *entity.Investment) error
	GetInvestmentsByUserID(ctx context.Context, userID string) ([]*entity.Investment, error)
	UpdateInvestment(ctx context.Context, id string, upd entity.InvestmentUpdate) (*entity.Investment, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *entity.Booking) error
	GetBookings(ctx context.Context, limit, offset int) ([]*entity.Booking, error)
	GetBookingsByUserID(ctx context.Context, userID string) ([]*entity.Booking, error)
	UpdateBooking(ctx context.Context, id string, upd entity.BookingUpdate) (*entity.Booking, error)

	// Email campaigns
	CreateEmailSequence(ctx context.Context, seq *entity.EmailSequence) error
	GetEmailSequences(ctx context.Context) ([]*entity.EmailSequence, error)
	GetActiveSequencesByTrigger(ctx context.Context, triggerEvent string) ([]*entity.EmailSequence, error)
	CreateEmailTemplate(ctx context.Context, tmpl *entity.EmailTemplate) error
	GetEmailTemplateByID(ctx context.Context, id string) (*entity.EmailTemplate, error)
	GetEmailTemplatesBySequence(ctx context.Context, sequenceID string) ([]*entity.EmailTemplate, error)
	CreateEmailSend(ctx context.Context, send *entity.EmailSend) error
	MarkEmailOpened(ctx context.Context, sendID string) error
	MarkEmailClicked(ctx context.Context, sendID string) error

	// Sessions
	CreateSession(ctx context.Context, sess *entity.Session) error
	GetSession(ctx context.Context, sid string) (*entity.Session, error)
	DeleteSession(ctx context.Context, sid string) error

	// Analytics
	GetLeadStats(ctx context.Context) (*LeadStats, error)
	GetInvestmentStats(ctx context.Context) (*InvestmentStats, error)
	GetEmailStats(ctx context.Context) (*EmailStats, error)
}
