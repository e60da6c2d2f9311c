package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

type EmailService interface {
	Send(to, subject, htmlBody string) error
}

type SendCampaignEmailInput struct {
	TemplateID string `json:"template_id"`
	LeadID     string `json:"lead_id"`
	UserID     string `json:"user_id"`
}

// SendCampaignEmailUseCase is the manual "send this template to this contact"
// action on the campaign dashboard. The send row is recorded even when SMTP is
// not configured; delivery failures record a failed row instead of erroring.
type SendCampaignEmailUseCase struct {
	Store  storage.Storage
	Mailer EmailService // nil when SMTP is not configured
}

func NewSendCampaignEmailUseCase(store storage.Storage, mailer EmailService) *SendCampaignEmailUseCase {
	return &SendCampaignEmailUseCase{Store: store, Mailer: mailer}
}

func (uc *SendCampaignEmailUseCase) Execute(ctx context.Context, input SendCampaignEmailInput) (*entity.EmailSend, error) {
	tmpl, err := uc.Store.GetEmailTemplateByID(ctx, input.TemplateID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &DomainError{Code: "TEMPLATE_NOT_FOUND", Message: "email template not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	to, err := uc.recipientEmail(ctx, input)
	if err != nil {
		return nil, err
	}

	send, err := entity.NewEmailSend(tmpl.ID, input.LeadID, input.UserID)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_SEND", Message: err.Error()}
	}

	if uc.Mailer != nil {
		if err := uc.Mailer.Send(to, tmpl.Subject, tmpl.Content); err != nil {
			log.Printf("campaign send to %s failed: %v", to, err)
			send.Status = entity.EmailSendStatusFailed
		}
	}

	if err := uc.Store.CreateEmailSend(ctx, send); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to record email send: " + err.Error()}
	}

	return send, nil
}

func (uc *SendCampaignEmailUseCase) recipientEmail(ctx context.Context, input SendCampaignEmailInput) (string, error) {
	switch {
	case input.LeadID != "":
		lead, err := uc.Store.GetLeadByID(ctx, input.LeadID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return "", &DomainError{Code: "LEAD_NOT_FOUND", Message: "lead not found"}
			}
			return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
		}
		return lead.Email, nil

	case input.UserID != "":
		user, err := uc.Store.GetUser(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return "", &DomainError{Code: "USER_NOT_FOUND", Message: "user not found"}
			}
			return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
		}
		return user.Email, nil

	default:
		return "", &DomainError{Code: "MISSING_RECIPIENT", Message: "a lead_id or user_id is required"}
	}
}
