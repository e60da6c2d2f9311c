package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	InvestmentStatusActive  = "active"
	InvestmentStatusClosed  = "closed"
	InvestmentStatusPending = "pending"
)

type Investment struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	FundName         string    `json:"fund_name"`
	FundDescription  string    `json:"fund_description,omitempty"`
	Amount           float64   `json:"amount"`
	CurrentValue     float64   `json:"current_value"`
	ReturnPercentage float64   `json:"return_percentage"`
	Status           string    `json:"status"`
	InvestmentDate   time.Time `json:"investment_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewInvestment(userID, fundName, fundDescription string, amount float64, investmentDate time.Time) (*Investment, error) {
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if fundName == "" {
		return nil, errors.New("fund_name is required")
	}
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if investmentDate.IsZero() {
		investmentDate = time.Now()
	}

	return &Investment{
		ID:              uuid.New().String(),
		UserID:          userID,
		FundName:        fundName,
		FundDescription: fundDescription,
		Amount:          amount,
		CurrentValue:    amount,
		Status:          InvestmentStatusActive,
		InvestmentDate:  investmentDate,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}, nil
}

type InvestmentUpdate struct {
	FundName         *string    `json:"fund_name"`
	FundDescription  *string    `json:"fund_description"`
	Amount           *float64   `json:"amount"`
	CurrentValue     *float64   `json:"current_value"`
	ReturnPercentage *float64   `json:"return_percentage"`
	Status           *string    `json:"status"`
	InvestmentDate   *time.Time `json:"investment_date"`
}
