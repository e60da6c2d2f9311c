package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Trigger events a sequence can be attached to.
const (
	TriggerLeadCapture        = "lead_capture"
	TriggerConsultationBooked = "consultation_booked"
)

const (
	EmailSendStatusSent    = "sent"
	EmailSendStatusFailed  = "failed"
	EmailSendStatusOpened  = "opened"
	EmailSendStatusClicked = "clicked"
)

// EmailSequence owns an ordered list of templates. There is no scheduler
// honoring DayDelay yet; only the first template of a triggered sequence goes
// out, the rest is record-keeping for the campaign dashboard.
type EmailSequence struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	TriggerEvent string    `json:"trigger_event"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewEmailSequence(name, description, triggerEvent string) (*EmailSequence, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if triggerEvent == "" {
		return nil, errors.New("trigger_event is required")
	}

	return &EmailSequence{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  description,
		IsActive:     true,
		TriggerEvent: triggerEvent,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

type EmailTemplate struct {
	ID         string    `json:"id"`
	SequenceID string    `json:"sequence_id,omitempty"`
	Name       string    `json:"name"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	DayDelay   int       `json:"day_delay"`
	Position   int       `json:"position"` // ordering inside the sequence
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewEmailTemplate(sequenceID, name, subject, content string, dayDelay, position int) (*EmailTemplate, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if subject == "" {
		return nil, errors.New("subject is required")
	}
	if content == "" {
		return nil, errors.New("content is required")
	}
	if dayDelay < 0 {
		dayDelay = 0
	}

	return &EmailTemplate{
		ID:         uuid.New().String(),
		SequenceID: sequenceID,
		Name:       name,
		Subject:    subject,
		Content:    content,
		DayDelay:   dayDelay,
		Position:   position,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

// EmailSend records one template delivered to one lead or user. OpenedAt and
// ClickedAt stay nil until the tracking endpoints fire.
type EmailSend struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	LeadID     string     `json:"lead_id,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
	SentAt     time.Time  `json:"sent_at"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	ClickedAt  *time.Time `json:"clicked_at,omitempty"`
	Status     string     `json:"status"`
}

func NewEmailSend(templateID, leadID, userID string) (*EmailSend, error) {
	if templateID == "" {
		return nil, errors.New("template_id is required")
	}
	if leadID == "" && userID == "" {
		return nil, errors.New("a lead_id or user_id recipient is required")
	}

	return &EmailSend{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		LeadID:     leadID,
		UserID:     userID,
		SentAt:     time.Now(),
		Status:     EmailSendStatusSent,
	}, nil
}
