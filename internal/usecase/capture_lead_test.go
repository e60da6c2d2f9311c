package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/pecapital-crm/internal/entity"
	"github.com/xavierca1/pecapital-crm/internal/infra/queue"
	"github.com/xavierca1/pecapital-crm/internal/storage"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishLeadCaptured(ctx context.Context, payload queue.LeadCapturedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func validCaptureInput() CaptureLeadInput {
	return CaptureLeadInput{
		FirstName:           "Alice",
		LastName:            "Mokoena",
		Email:               "alice@example.com",
		Phone:               "+27821234567",
		Age:                 "35-44",
		InvestmentBudget:    "100k-500k",
		MoneyReadyAvailable: "yes",
		Source:              "website",
	}
}

func TestCaptureLeadScoresByBudget(t *testing.T) {
	cases := []struct {
		budget string
		score  int
	}{
		{"500k+", 90},
		{"100k-500k", 75},
		{"50k-100k", 60},
		{"under-50k", 50},
		{"", 50},
	}

	for _, tc := range cases {
		t.Run("budget "+tc.budget, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			uc := NewCaptureLeadUseCase(store, nil)

			input := validCaptureInput()
			input.InvestmentBudget = tc.budget

			lead, err := uc.Execute(context.Background(), input)
			assert.NoError(t, err)
			assert.Equal(t, tc.score, lead.Score)
			assert.Equal(t, entity.LeadStatusNew, lead.Status)
			assert.NotEmpty(t, lead.ID)

			persisted, err := store.GetLeadByID(context.Background(), lead.ID)
			assert.NoError(t, err)
			assert.Equal(t, tc.score, persisted.Score)
		})
	}
}

func TestCaptureLeadValidationFailure(t *testing.T) {
	store := storage.NewMemoryStorage()
	uc := NewCaptureLeadUseCase(store, nil)

	input := validCaptureInput()
	input.FirstName = ""
	input.Email = "not-an-email"

	lead, err := uc.Execute(context.Background(), input)
	assert.Nil(t, lead)
	assert.True(t, IsDomainError(err))

	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	assert.Contains(t, domainErr.Message, "first_name")
	assert.Contains(t, domainErr.Message, "email")

	leads, err := store.GetLeads(context.Background(), 10, 0)
	assert.NoError(t, err)
	assert.Empty(t, leads)
}

func TestCaptureLeadPublishesEvent(t *testing.T) {
	store := storage.NewMemoryStorage()
	producer := new(MockProducer)
	producer.On("PublishLeadCaptured", mock.Anything, mock.MatchedBy(func(p queue.LeadCapturedPayload) bool {
		return p.Email == "alice@example.com" && p.Score == 75 && p.Source == "website"
	})).Return(nil)

	uc := NewCaptureLeadUseCase(store, producer)

	lead, err := uc.Execute(context.Background(), validCaptureInput())
	assert.NoError(t, err)
	assert.NotNil(t, lead)

	producer.AssertExpectations(t)
}

func TestCaptureLeadSurvivesQueueOutage(t *testing.T) {
	store := storage.NewMemoryStorage()
	producer := new(MockProducer)
	producer.On("PublishLeadCaptured", mock.Anything, mock.Anything).Return(assert.AnError)

	uc := NewCaptureLeadUseCase(store, producer)

	lead, err := uc.Execute(context.Background(), validCaptureInput())
	assert.NoError(t, err)

	persisted, err := store.GetLeadByID(context.Background(), lead.ID)
	assert.NoError(t, err)
	assert.Equal(t, lead.Email, persisted.Email)
}

func TestValidateCaptureLeadInputPhone(t *testing.T) {
	input := validCaptureInput()
	input.Phone = "12"

	errs := ValidateCaptureLeadInput(input)
	assert.Len(t, errs, 1)
	assert.Equal(t, "phone", errs[0].Field)

	input.Phone = ""
	assert.Empty(t, ValidateCaptureLeadInput(input))
}
