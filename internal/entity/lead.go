package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Lead statuses. Free-form on purpose: the CRM dashboard writes whatever the
// staff picks and the update endpoint does not enforce transitions.
const (
	LeadStatusNew          = "new"
	LeadStatusQualified    = "qualified"
	LeadStatusConsultation = "consultation"
	LeadStatusClosed       = "closed"
	LeadStatusLost         = "lost"
)

type Lead struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name,omitempty"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	Age                 string    `json:"age"`
	InvestmentBudget    string    `json:"investment_budget,omitempty"`
	MoneyReadyAvailable string    `json:"money_ready_available"`
	Source              string    `json:"source,omitempty"`
	Status              string    `json:"status"`
	Score               int       `json:"score"` // 0-100, derived from budget bracket
	Notes               string    `json:"notes,omitempty"`
	UserID              string    `json:"user_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewLead(firstName, lastName, email, phone, age, budget, moneyReady, source string) (*Lead, error) {
	lead := &Lead{
		ID:                  uuid.New().String(),
		FirstName:           firstName,
		LastName:            lastName,
		Email:               email,
		Phone:               phone,
		Age:                 age,
		InvestmentBudget:    budget,
		MoneyReadyAvailable: moneyReady,
		Source:              source,
		Status:              LeadStatusNew,
		Score:               0,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.FirstName == "" {
		return errors.New("first_name is required")
	}
	if l.Email == "" {
		return errors.New("email is required")
	}
	if l.Age == "" {
		return errors.New("age is required")
	}
	if l.MoneyReadyAvailable == "" {
		return errors.New("money_ready_available is required")
	}
	return nil
}

// LeadUpdate carries the partial fields of a PUT. Nil means "leave as is".
type LeadUpdate struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	InvestmentBudget *string `json:"investment_budget"`
	Source           *string `json:"source"`
	Status           *string `json:"status"`
	Score            *int    `json:"score"`
	Notes            *string `json:"notes"`
	UserID           *string `json:"user_id"`
}
