package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/infra/queue"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

type CaptureLeadInput struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Age                 string `json:"age"`
	InvestmentBudget    string `json:"investment_budget"`
	MoneyReadyAvailable string `json:"money_ready_available"`
	Source              string `json:"source"`
}

// CaptureLeadUseCase is the public funnel entry: validate, score, persist,
// and hand the lead to the email pipeline when a queue is wired.
type CaptureLeadUseCase struct {
	Store    storage.Storage
	Producer queue.ProducerInterface // nil when RabbitMQ is not configured
}

func NewCaptureLeadUseCase(store storage.Storage, producer queue.ProducerInterface) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{Store: store, Producer: producer}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*entity.Lead, error) {
	validationErrors := ValidateCaptureLeadInput(input)
	if len(validationErrors) > 0 {
		errMsg := "validation failed: "
		for _, e := range validationErrors {
			errMsg += e.Field + " (" + e.Message + "), "
		}
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: errMsg,
		}
	}

	lead, err := entity.NewLead(
		input.FirstName, input.LastName, input.Email, input.Phone,
		input.Age, input.InvestmentBudget, input.MoneyReadyAvailable, input.Source,
	)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_LEAD", Message: err.Error()}
	}

	lead.Score = ScoreForBudget(input.InvestmentBudget)

	if err := uc.Store.CreateLead(ctx, lead); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist lead: " + err.Error(),
		}
	}

	// Best effort: a queue outage must not cost us the lead.
	if uc.Producer != nil {
		payload := queue.LeadCapturedPayload{
			LeadID:    lead.ID,
			Email:     lead.Email,
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Source:    lead.Source,
			Score:     lead.Score,
		}
		if err := uc.Producer.PublishLeadCaptured(ctx, payload); err != nil {
			log.Printf("lead %s captured but queue publish failed: %v", lead.ID, err)
		}
	}

	return lead, nil
}
