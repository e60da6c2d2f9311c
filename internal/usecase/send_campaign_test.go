package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

func seedCampaignFixtures(t *testing.T, store storage.Storage) (*entity.EmailTemplate, *entity.Lead) {
	t.Helper()
	ctx := context.Background()

	seq, err := entity.NewEmailSequence("Welcome Series", "", entity.TriggerLeadCapture)
	assert.NoError(t, err)
	assert.NoError(t, store.CreateEmailSequence(ctx, seq))

	tmpl, err := entity.NewEmailTemplate(seq.ID, "Welcome", "Welcome to PE Capital", "<p>Hi</p>", 0, 1)
	assert.NoError(t, err)
	assert.NoError(t, store.CreateEmailTemplate(ctx, tmpl))

	lead, err := entity.NewLead("Alice", "Mokoena", "alice@example.com", "", "35-44", "500k+", "yes", "website")
	assert.NoError(t, err)
	assert.NoError(t, store.CreateLead(ctx, lead))

	return tmpl, lead
}

func TestSendCampaignEmailToLead(t *testing.T) {
	store := storage.NewMemoryStorage()
	tmpl, lead := seedCampaignFixtures(t, store)

	mailer := new(MockMailer)
	mailer.On("Send", "alice@example.com", "Welcome to PE Capital", "<p>Hi</p>").Return(nil)

	uc := NewSendCampaignEmailUseCase(store, mailer)

	send, err := uc.Execute(context.Background(), SendCampaignEmailInput{
		TemplateID: tmpl.ID,
		LeadID:     lead.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, entity.EmailSendStatusSent, send.Status)
	assert.Equal(t, lead.ID, send.LeadID)

	mailer.AssertExpectations(t)

	stats, err := store.GetEmailStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSent)
}

func TestSendCampaignEmailDeliveryFailureIsRecorded(t *testing.T) {
	store := storage.NewMemoryStorage()
	tmpl, lead := seedCampaignFixtures(t, store)

	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	uc := NewSendCampaignEmailUseCase(store, mailer)

	send, err := uc.Execute(context.Background(), SendCampaignEmailInput{
		TemplateID: tmpl.ID,
		LeadID:     lead.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, entity.EmailSendStatusFailed, send.Status)
}

func TestSendCampaignEmailWithoutMailerStillRecords(t *testing.T) {
	store := storage.NewMemoryStorage()
	tmpl, lead := seedCampaignFixtures(t, store)

	uc := NewSendCampaignEmailUseCase(store, nil)

	send, err := uc.Execute(context.Background(), SendCampaignEmailInput{
		TemplateID: tmpl.ID,
		LeadID:     lead.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, entity.EmailSendStatusSent, send.Status)
}

func TestSendCampaignEmailTemplateNotFound(t *testing.T) {
	store := storage.NewMemoryStorage()
	uc := NewSendCampaignEmailUseCase(store, nil)

	_, err := uc.Execute(context.Background(), SendCampaignEmailInput{
		TemplateID: "missing",
		LeadID:     "whatever",
	})

	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TEMPLATE_NOT_FOUND", domainErr.Code)
}

func TestSendCampaignEmailMissingRecipient(t *testing.T) {
	store := storage.NewMemoryStorage()
	tmpl, _ := seedCampaignFixtures(t, store)

	uc := NewSendCampaignEmailUseCase(store, nil)

	_, err := uc.Execute(context.Background(), SendCampaignEmailInput{TemplateID: tmpl.ID})

	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_RECIPIENT", domainErr.Code)
}
