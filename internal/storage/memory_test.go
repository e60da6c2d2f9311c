package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/pecapital-crm/internal/entity"
)

func newTestLead(t *testing.T, firstName, budget string) *entity.Lead {
	t.Helper()
	lead, err := entity.NewLead(firstName, "Tester", firstName+"@example.com", "", "35-44", budget, "yes", "website")
	assert.NoError(t, err)
	return lead
}

func TestMemoryStorageLeadPagination(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	// Distinct creation times so the ordering is deterministic
	base := time.Now()
	names := []string{"alice", "bob", "carol", "dave", "erin"}
	for i, name := range names {
		lead := newTestLead(t, name, "")
		lead.CreatedAt = base.Add(time.Duration(i) * time.Second)
		assert.NoError(t, store.CreateLead(ctx, lead))
	}

	page1, err := store.GetLeads(ctx, 2, 0)
	assert.NoError(t, err)
	page2, err := store.GetLeads(ctx, 2, 2)
	assert.NoError(t, err)

	assert.Len(t, page1, 2)
	assert.Len(t, page2, 2)

	// Newest first, pages contiguous and disjoint
	assert.Equal(t, "erin", page1[0].FirstName)
	assert.Equal(t, "dave", page1[1].FirstName)
	assert.Equal(t, "carol", page2[0].FirstName)
	assert.Equal(t, "bob", page2[1].FirstName)

	// Offset past the end comes back empty, not nil-panicky
	empty, err := store.GetLeads(ctx, 2, 10)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStorageUpdateMissingIDs(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	_, err := store.UpdateLead(ctx, "nope", entity.LeadUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateInvestment(ctx, "nope", entity.InvestmentUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateBooking(ctx, "nope", entity.BookingUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UpdateUserStripeInfo(ctx, "nope", "cus_123", "sub_456")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.MarkEmailOpened(ctx, "nope"), ErrNotFound)
	assert.ErrorIs(t, store.MarkEmailClicked(ctx, "nope"), ErrNotFound)
}

func TestMemoryStorageLeadStatsFollowStatusChanges(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	lead := newTestLead(t, "alice", "500k+")
	assert.NoError(t, store.CreateLead(ctx, lead))

	stats, err := store.GetLeadStats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 0, stats.Closed)

	closed := entity.LeadStatusClosed
	_, err = store.UpdateLead(ctx, lead.ID, entity.LeadUpdate{Status: &closed})
	assert.NoError(t, err)

	stats, err = store.GetLeadStats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.New)
	assert.Equal(t, 1, stats.Closed)
}

func TestMemoryStorageEmailStatsZeroSends(t *testing.T) {
	store := NewMemoryStorage()

	stats, err := store.GetEmailStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSent)
	assert.Equal(t, 0.0, stats.OpenRate)
	assert.Equal(t, 0.0, stats.ClickRate)
}

func TestMemoryStorageEmailEngagement(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	seq, err := entity.NewEmailSequence("Welcome Series", "", entity.TriggerLeadCapture)
	assert.NoError(t, err)
	assert.NoError(t, store.CreateEmailSequence(ctx, seq))

	tmpl, err := entity.NewEmailTemplate(seq.ID, "Welcome", "Welcome to PE Capital", "<p>Hi</p>", 0, 1)
	assert.NoError(t, err)
	assert.NoError(t, store.CreateEmailTemplate(ctx, tmpl))

	lead := newTestLead(t, "alice", "")
	assert.NoError(t, store.CreateLead(ctx, lead))

	var sends []*entity.EmailSend
	for i := 0; i < 4; i++ {
		send, err := entity.NewEmailSend(tmpl.ID, lead.ID, "")
		assert.NoError(t, err)
		assert.NoError(t, store.CreateEmailSend(ctx, send))
		sends = append(sends, send)
	}

	assert.NoError(t, store.MarkEmailOpened(ctx, sends[0].ID))
	assert.NoError(t, store.MarkEmailOpened(ctx, sends[1].ID))
	assert.NoError(t, store.MarkEmailClicked(ctx, sends[0].ID))

	stats, err := store.GetEmailStats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSent)
	assert.Equal(t, 2, stats.TotalOpened)
	assert.Equal(t, 1, stats.TotalClicked)
	assert.Equal(t, 50.0, stats.OpenRate)
	assert.Equal(t, 25.0, stats.ClickRate)
}

func TestMemoryStorageTemplatesOrderedByPosition(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	seq, err := entity.NewEmailSequence("Welcome Series", "", entity.TriggerLeadCapture)
	assert.NoError(t, err)
	assert.NoError(t, store.CreateEmailSequence(ctx, seq))

	for _, pos := range []int{3, 1, 2} {
		tmpl, err := entity.NewEmailTemplate(seq.ID, "Step", "Subject", "Body", 0, pos)
		assert.NoError(t, err)
		assert.NoError(t, store.CreateEmailTemplate(ctx, tmpl))
	}

	templates, err := store.GetEmailTemplatesBySequence(ctx, seq.ID)
	assert.NoError(t, err)
	assert.Len(t, templates, 3)
	assert.Equal(t, 1, templates[0].Position)
	assert.Equal(t, 2, templates[1].Position)
	assert.Equal(t, 3, templates[2].Position)
}

func TestMemoryStorageInvestmentStats(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	user, err := entity.NewUser("investor1", "inv@example.com", "secret123", "John", "Investor")
	assert.NoError(t, err)
	user.Role = entity.RoleInvestor
	assert.NoError(t, store.CreateUser(ctx, user))

	inv1, err := entity.NewInvestment(user.ID, "Growth Fund I", "", 100000, time.Now())
	assert.NoError(t, err)
	inv1.CurrentValue = 110000
	assert.NoError(t, store.CreateInvestment(ctx, inv1))

	inv2, err := entity.NewInvestment(user.ID, "Income Fund", "", 50000, time.Now())
	assert.NoError(t, err)
	inv2.CurrentValue = 48000
	assert.NoError(t, store.CreateInvestment(ctx, inv2))

	stats, err := store.GetInvestmentStats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.TotalInvestments)
	assert.Equal(t, 150000.0, stats.TotalAmount)
	assert.Equal(t, 158000.0, stats.TotalCurrentValue)
	assert.Equal(t, 1, stats.ActiveInvestors)
}

func TestMemoryStorageSessions(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	sess := entity.NewSession("user-1", entity.RoleAdmin, time.Hour)
	assert.NoError(t, store.CreateSession(ctx, sess))

	got, err := store.GetSession(ctx, sess.SID)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	expired := entity.NewSession("user-2", entity.RoleAdmin, -time.Hour)
	assert.NoError(t, store.CreateSession(ctx, expired))

	_, err = store.GetSession(ctx, expired.SID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.DeleteSession(ctx, sess.SID))
	_, err = store.GetSession(ctx, sess.SID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorageUpdateUserStripeInfo(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	user, err := entity.NewUser("alice", "alice@example.com", "secret123", "", "")
	assert.NoError(t, err)
	assert.NoError(t, store.CreateUser(ctx, user))

	updated, err := store.UpdateUserStripeInfo(ctx, user.ID, "cus_123", "sub_456")
	assert.NoError(t, err)
	assert.Equal(t, "cus_123", updated.StripeCustomerID)
	assert.Equal(t, "sub_456", updated.StripeSubscriptionID)

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "cus_123", got.StripeCustomerID)
}

func TestMemoryStorageDuplicateUser(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	user, err := entity.NewUser("alice", "alice@example.com", "secret123", "", "")
	assert.NoError(t, err)
	assert.NoError(t, store.CreateUser(ctx, user))

	dup, err := entity.NewUser("alice", "other@example.com", "secret123", "", "")
	assert.NoError(t, err)
	assert.ErrorIs(t, store.CreateUser(ctx, dup), entity.ErrUserAlreadyExists)
}
