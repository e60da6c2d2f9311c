package storage

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/pecapital-crm/internal/entity"
)

// MemoryStorage keeps everything in mutex-guarded maps. It is the development
// and demo backend, used when DATABASE_URL is not set. It does not enforce the
// foreign keys the postgres schema does.
type MemoryStorage struct {
	mu             sync.RWMutex
	users          map[string]*entity.User
	leads          map[string]*entity.Lead
	investments    map[string]*entity.Investment
	bookings       map[string]*entity.Booking
	emailSequences map[string]*entity.EmailSequence
	emailTemplates map[string]*entity.EmailTemplate
	emailSends     map[string]*entity.EmailSend
	sessions       map[string]*entity.Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:          make(map[string]*entity.User),
		leads:          make(map[string]*entity.Lead),
		investments:    make(map[string]*entity.Investment),
		bookings:       make(map[string]*entity.Booking),
		emailSequences: make(map[string]*entity.EmailSequence),
		emailTemplates: make(map[string]*entity.EmailTemplate),
		emailSends:     make(map[string]*entity.EmailSend),
		sessions:       make(map[string]*entity.Session),
	}
}

// SeedDefaults creates the admin and investor demo logins. Called from main
// only for the memory backend, never from tests.
func (m *MemoryStorage) SeedDefaults() error {
	admin, err := entity.NewUser("admin", "admin@pecapital.example", "admin123!", "Admin", "User")
	if err != nil {
		return err
	}
	admin.Role = entity.RoleAdmin

	investor, err := entity.NewUser("investor", "investor@pecapital.example", "admin123!", "John", "Investor")
	if err != nil {
		return err
	}
	investor.Role = entity.RoleInvestor

	m.mu.Lock()
	m.users[admin.ID] = admin
	m.users[investor.ID] = investor
	m.mu.Unlock()

	log.Println("Seeded default users: admin / investor (password admin123!)")
	return nil
}

// --- Users ---

func (m *MemoryStorage) GetUser(ctx context.Context, id string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStorage) CreateUser(ctx context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return entity.ErrUserAlreadyExists
		}
	}

	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryStorage) UpdateUserStripeInfo(ctx context.Context, userID, stripeCustomerID, stripeSubscriptionID string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	user.StripeCustomerID = stripeCustomerID
	user.StripeSubscriptionID = stripeSubscriptionID
	user.UpdatedAt = time.Now()

	cp := *user
	return &cp, nil
}

// --- Leads ---

func (m *MemoryStorage) CreateLead(ctx context.Context, lead *entity.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *lead
	m.leads[lead.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetLeads(ctx context.Context, limit, offset int) ([]*entity.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*entity.Lead, 0, len(m.leads))
	for _, lead := range m.leads {
		cp := *lead
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return paginate(all, limit, offset), nil
}

func (m *MemoryStorage) GetLeadByID(ctx context.Context, id string) (*entity.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lead, ok := m.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *lead
	return &cp, nil
}

func (m *MemoryStorage) UpdateLead(ctx context.Context, id string, upd entity.LeadUpdate) (*entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyString(&lead.FirstName, upd.FirstName)
	applyString(&lead.LastName, upd.LastName)
	applyString(&lead.Email, upd.Email)
	applyString(&lead.Phone, upd.Phone)
	applyString(&lead.InvestmentBudget, upd.InvestmentBudget)
	applyString(&lead.Source, upd.Source)
	applyString(&lead.Status, upd.Status)
	applyString(&lead.Notes, upd.Notes)
	applyString(&lead.UserID, upd.UserID)
	if upd.Score != nil {
		lead.Score = *upd.Score
	}
	lead.UpdatedAt = time.Now()

	cp := *lead
	return &cp, nil
}

// --- Investments ---

func (m *MemoryStorage) CreateInvestment(ctx context.Context, inv *entity.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *inv
	m.investments[inv.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetInvestmentsByUserID(ctx context.Context, userID string) ([]*entity.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*entity.Investment
	for _, inv := range m.investments {
		if inv.UserID == userID {
			cp := *inv
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].InvestmentDate.After(result[j].InvestmentDate)
	})
	return result, nil
}

func (m *MemoryStorage) UpdateInvestment(ctx context.Context, id string, upd entity.InvestmentUpdate) (*entity.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.investments[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyString(&inv.FundName, upd.FundName)
	applyString(&inv.FundDescription, upd.FundDescription)
	applyString(&inv.Status, upd.Status)
	if upd.Amount != nil {
		inv.Amount = *upd.Amount
	}
	if upd.CurrentValue != nil {
		inv.CurrentValue = *upd.CurrentValue
	}
	if upd.ReturnPercentage != nil {
		inv.ReturnPercentage = *upd.ReturnPercentage
	}
	if upd.InvestmentDate != nil {
		inv.InvestmentDate = *upd.InvestmentDate
	}
	inv.UpdatedAt = time.Now()

	cp := *inv
	return &cp, nil
}

// --- Bookings ---

func (m *MemoryStorage) CreateBooking(ctx context.Context, booking *entity.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetBookings(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*entity.Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		cp := *booking
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ScheduledAt.After(all[j].ScheduledAt)
	})

	return paginate(all, limit, offset), nil
}

func (m *MemoryStorage) GetBookingsByUserID(ctx context.Context, userID string) ([]*entity.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*entity.Booking
	for _, booking := range m.bookings {
		if booking.UserID == userID {
			cp := *booking
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.After(result[j].ScheduledAt)
	})
	return result, nil
}

func (m *MemoryStorage) UpdateBooking(ctx context.Context, id string, upd entity.BookingUpdate) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyString(&booking.Type, upd.Type)
	applyString(&booking.Status, upd.Status)
	applyString(&booking.MeetingLink, upd.MeetingLink)
	applyString(&booking.Notes, upd.Notes)
	if upd.ScheduledAt != nil {
		booking.ScheduledAt = *upd.ScheduledAt
	}
	if upd.Duration != nil {
		booking.Duration = *upd.Duration
	}
	booking.UpdatedAt = time.Now()

	cp := *booking
	return &cp, nil
}

// --- Email campaigns ---

func (m *MemoryStorage) CreateEmailSequence(ctx context.Context, seq *entity.EmailSequence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *seq
	m.emailSequences[seq.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetEmailSequences(ctx context.Context) ([]*entity.EmailSequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*entity.EmailSequence, 0, len(m.emailSequences))
	for _, seq := range m.emailSequences {
		cp := *seq
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (m *MemoryStorage) GetActiveSequencesByTrigger(ctx context.Context, triggerEvent string) ([]*entity.EmailSequence, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*entity.EmailSequence
	for _, seq := range m.emailSequences {
		if seq.IsActive && seq.TriggerEvent == triggerEvent {
			cp := *seq
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStorage) CreateEmailTemplate(ctx context.Context, tmpl *entity.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *tmpl
	m.emailTemplates[tmpl.ID] = &cp
	return nil
}

func (m *MemoryStorage) GetEmailTemplateByID(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tmpl, ok := m.emailTemplates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tmpl
	return &cp, nil
}

func (m *MemoryStorage) GetEmailTemplatesBySequence(ctx context.Context, sequenceID string) ([]*entity.EmailTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*entity.EmailTemplate
	for _, tmpl := range m.emailTemplates {
		if tmpl.SequenceID == sequenceID {
			cp := *tmpl
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

func (m *MemoryStorage) CreateEmailSend(ctx context.Context, send *entity.EmailSend) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *send
	m.emailSends[send.ID] = &cp
	return nil
}

func (m *MemoryStorage) MarkEmailOpened(ctx context.Context, sendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	send, ok := m.emailSends[sendID]
	if !ok {
		return ErrNotFound
	}
	if send.OpenedAt == nil {
		now := time.Now()
		send.OpenedAt = &now
		send.Status = entity.EmailSendStatusOpened
	}
	return nil
}

func (m *MemoryStorage) MarkEmailClicked(ctx context.Context, sendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	send, ok := m.emailSends[sendID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	if send.OpenedAt == nil {
		send.OpenedAt = &now
	}
	if send.ClickedAt == nil {
		send.ClickedAt = &now
		send.Status = entity.EmailSendStatusClicked
	}
	return nil
}

// --- Sessions ---

func (m *MemoryStorage) CreateSession(ctx context.Context, sess *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sess
	m.sessions[sess.SID] = &cp
	return nil
}

func (m *MemoryStorage) GetSession(ctx context.Context, sid string) (*entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sid]
	if !ok || sess.Expired() {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *MemoryStorage) DeleteSession(ctx context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sid)
	return nil
}

// --- Analytics ---

func (m *MemoryStorage) GetLeadStats(ctx context.Context) (*LeadStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &LeadStats{Total: len(m.leads)}
	for _, lead := range m.leads {
		switch lead.Status {
		case entity.LeadStatusNew:
			stats.New++
		case entity.LeadStatusQualified:
			stats.Qualified++
		case entity.LeadStatusConsultation:
			stats.Consultation++
		case entity.LeadStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

func (m *MemoryStorage) GetInvestmentStats(ctx context.Context) (*InvestmentStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &InvestmentStats{TotalInvestments: len(m.investments)}
	for _, inv := range m.investments {
		stats.TotalAmount += inv.Amount
		stats.TotalCurrentValue += inv.CurrentValue
	}
	for _, user := range m.users {
		if user.Role == entity.RoleInvestor {
			stats.ActiveInvestors++
		}
	}
	return stats, nil
}

func (m *MemoryStorage) GetEmailStats(ctx context.Context) (*EmailStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &EmailStats{TotalSent: len(m.emailSends)}
	for _, send := range m.emailSends {
		if send.OpenedAt != nil {
			stats.TotalOpened++
		}
		if send.ClickedAt != nil {
			stats.TotalClicked++
		}
	}
	if stats.TotalSent > 0 {
		stats.OpenRate = float64(stats.TotalOpened) / float64(stats.TotalSent) * 100
		stats.ClickRate = float64(stats.TotalClicked) / float64(stats.TotalSent) * 100
	}
	return stats, nil
}

// --- helpers ---

func paginate[T any](all []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
