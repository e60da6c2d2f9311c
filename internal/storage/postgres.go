package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/pecapital-crm/internal/entity"
)

// PostgresStorage runs the same contract over database/sql. Referential
// integrity lives in schema.sql, not here.
type PostgresStorage struct {
	DB *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{DB: db}
}

// NewConnection opens the pool and proves it with a ping before anyone
// gets to use it.
func NewConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// --- Users ---

const userColumns = `id, username, email, password, first_name, last_name, profile_image_url,
	role, stripe_customer_id, stripe_subscription_id, created_at, updated_at`

func (s *PostgresStorage) scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	var firstName, lastName, imageURL, stripeCus, stripeSub sql.NullString

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password,
		&firstName, &lastName, &imageURL,
		&u.Role, &stripeCus, &stripeSub,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.ProfileImageURL = imageURL.String
	u.StripeCustomerID = stripeCus.String
	u.StripeSubscriptionID = stripeSub.String
	return &u, nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, id))
}

func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username))
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email))
}

func (s *PostgresStorage) CreateUser(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, password, first_name, last_name, profile_image_url,
			role, stripe_customer_id, stripe_subscription_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.DB.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.Password,
		nullString(u.FirstName), nullString(u.LastName), nullString(u.ProfileImageURL),
		u.Role, nullString(u.StripeCustomerID), nullString(u.StripeSubscriptionID),
		u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrUserAlreadyExists
		}
		return err
	}

	return nil
}

func (s *PostgresStorage) UpdateUserStripeInfo(ctx context.Context, userID, stripeCustomerID, stripeSubscriptionID string) (*entity.User, error) {
	query := `
		UPDATE users
		SET stripe_customer_id = $2, stripe_subscription_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return s.scanUser(s.DB.QueryRowContext(ctx, query,
		userID, nullString(stripeCustomerID), nullString(stripeSubscriptionID)))
}

// --- Leads ---

const leadColumns = `id, first_name, last_name, email, phone, age, investment_budget,
	money_ready_available, source, status, score, notes, user_id, created_at, updated_at`

func (s *PostgresStorage) scanLead(row interface{ Scan(...any) error }) (*entity.Lead, error) {
	var l entity.Lead
	var lastName, phone, budget, source, notes, userID sql.NullString

	err := row.Scan(
		&l.ID, &l.FirstName, &lastName, &l.Email, &phone, &l.Age, &budget,
		&l.MoneyReadyAvailable, &source, &l.Status, &l.Score, &notes, &userID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	l.LastName = lastName.String
	l.Phone = phone.String
	l.InvestmentBudget = budget.String
	l.Source = source.String
	l.Notes = notes.String
	l.UserID = userID.String
	return &l, nil
}

func (s *PostgresStorage) CreateLead(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (id, first_name, last_name, email, phone, age, investment_budget,
			money_ready_available, source, status, score, notes, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.DB.ExecContext(ctx, query,
		l.ID, l.FirstName, nullString(l.LastName), l.Email, nullString(l.Phone),
		l.Age, nullString(l.InvestmentBudget), l.MoneyReadyAvailable,
		nullString(l.Source), l.Status, l.Score, nullString(l.Notes),
		nullString(l.UserID), l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) GetLeads(ctx context.Context, limit, offset int) ([]*entity.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := s.scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (s *PostgresStorage) GetLeadByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return s.scanLead(s.DB.QueryRowContext(ctx, query, id))
}

func (s *PostgresStorage) UpdateLead(ctx context.Context, id string, upd entity.LeadUpdate) (*entity.Lead, error) {
	query := `
		UPDATE leads
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone),
			investment_budget = COALESCE($6, investment_budget),
			source = COALESCE($7, source),
			status = COALESCE($8, status),
			score = COALESCE($9, score),
			notes = COALESCE($10, notes),
			user_id = COALESCE($11, user_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leadColumns

	return s.scanLead(s.DB.QueryRowContext(ctx, query, id,
		upd.FirstName, upd.LastName, upd.Email, upd.Phone, upd.InvestmentBudget,
		upd.Source, upd.Status, upd.Score, upd.Notes, upd.UserID))
}

// --- Investments ---

const investmentColumns = `id, user_id, fund_name, fund_description, amount, current_value,
	return_percentage, status, investment_date, created_at, updated_at`

func (s *PostgresStorage) scanInvestment(row interface{ Scan(...any) error }) (*entity.Investment, error) {
	var inv entity.Investment
	var description sql.NullString
	var currentValue, returnPct sql.NullFloat64

	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.FundName, &description, &inv.Amount,
		&currentValue, &returnPct, &inv.Status, &inv.InvestmentDate,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	inv.FundDescription = description.String
	inv.CurrentValue = currentValue.Float64
	inv.ReturnPercentage = returnPct.Float64
	return &inv, nil
}

func (s *PostgresStorage) CreateInvestment(ctx context.Context, inv *entity.Investment) error {
	query := `
		INSERT INTO investments (id, user_id, fund_name, fund_description, amount, current_value,
			return_percentage, status, investment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.DB.ExecContext(ctx, query,
		inv.ID, inv.UserID, inv.FundName, nullString(inv.FundDescription),
		inv.Amount, inv.CurrentValue, inv.ReturnPercentage, inv.Status,
		inv.InvestmentDate, inv.CreatedAt, inv.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) GetInvestmentsByUserID(ctx context.Context, userID string) ([]*entity.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments
		WHERE user_id = $1 ORDER BY investment_date DESC`

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investments := []*entity.Investment{}
	for rows.Next() {
		inv, err := s.scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

func (s *PostgresStorage) UpdateInvestment(ctx context.Context, id string, upd entity.InvestmentUpdate) (*entity.Investment, error) {
	query := `
		UPDATE investments
		SET fund_name = COALESCE($2, fund_name),
			fund_description = COALESCE($3, fund_description),
			amount = COALESCE($4, amount),
			current_value = COALESCE($5, current_value),
			return_percentage = COALESCE($6, return_percentage),
			status = COALESCE($7, status),
			investment_date = COALESCE($8, investment_date),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + investmentColumns

	return s.scanInvestment(s.DB.QueryRowContext(ctx, query, id,
		upd.FundName, upd.FundDescription, upd.Amount, upd.CurrentValue,
		upd.ReturnPercentage, upd.Status, upd.InvestmentDate))
}

// --- Bookings ---

const bookingColumns = `id, lead_id, user_id, scheduled_at, duration, type, status,
	meeting_link, notes, created_at, updated_at`

func (s *PostgresStorage) scanBooking(row interface{ Scan(...any) error }) (*entity.Booking, error) {
	var b entity.Booking
	var leadID, userID, meetingLink, notes sql.NullString

	err := row.Scan(
		&b.ID, &leadID, &userID, &b.ScheduledAt, &b.Duration, &b.Type,
		&b.Status, &meetingLink, &notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b.LeadID = leadID.String
	b.UserID = userID.String
	b.MeetingLink = meetingLink.String
	b.Notes = notes.String
	return &b, nil
}

func (s *PostgresStorage) CreateBooking(ctx context.Context, b *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, lead_id, user_id, scheduled_at, duration, type, status,
			meeting_link, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.DB.ExecContext(ctx, query,
		b.ID, nullString(b.LeadID), nullString(b.UserID), b.ScheduledAt,
		b.Duration, b.Type, b.Status, nullString(b.MeetingLink),
		nullString(b.Notes), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) GetBookings(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY scheduled_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*entity.Booking{}
	for rows.Next() {
		booking, err := s.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (s *PostgresStorage) GetBookingsByUserID(ctx context.Context, userID string) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE user_id = $1 ORDER BY scheduled_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*entity.Booking{}
	for rows.Next() {
		booking, err := s.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (s *PostgresStorage) UpdateBooking(ctx context.Context, id string, upd entity.BookingUpdate) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET scheduled_at = COALESCE($2, scheduled_at),
			duration = COALESCE($3, duration),
			type = COALESCE($4, type),
			status = COALESCE($5, status),
			meeting_link = COALESCE($6, meeting_link),
			notes = COALESCE($7, notes),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	return s.scanBooking(s.DB.QueryRowContext(ctx, query, id,
		upd.ScheduledAt, upd.Duration, upd.Type, upd.Status, upd.MeetingLink, upd.Notes))
}

// --- Email campaigns ---

func (s *PostgresStorage) CreateEmailSequence(ctx context.Context, seq *entity.EmailSequence) error {
	query := `
		INSERT INTO email_sequences (id, name, description, is_active, trigger_event, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.DB.ExecContext(ctx, query,
		seq.ID, seq.Name, nullString(seq.Description), seq.IsActive,
		seq.TriggerEvent, seq.CreatedAt, seq.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) scanSequence(row interface{ Scan(...any) error }) (*entity.EmailSequence, error) {
	var seq entity.EmailSequence
	var description sql.NullString

	err := row.Scan(&seq.ID, &seq.Name, &description, &seq.IsActive,
		&seq.TriggerEvent, &seq.CreatedAt, &seq.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	seq.Description = description.String
	return &seq, nil
}

func (s *PostgresStorage) GetEmailSequences(ctx context.Context) ([]*entity.EmailSequence, error) {
	query := `SELECT id, name, description, is_active, trigger_event, created_at, updated_at
		FROM email_sequences ORDER BY created_at DESC`

	return s.querySequences(ctx, query)
}

func (s *PostgresStorage) GetActiveSequencesByTrigger(ctx context.Context, triggerEvent string) ([]*entity.EmailSequence, error) {
	query := `SELECT id, name, description, is_active, trigger_event, created_at, updated_at
		FROM email_sequences WHERE is_active AND trigger_event = $1 ORDER BY created_at DESC`

	return s.querySequences(ctx, query, triggerEvent)
}

func (s *PostgresStorage) querySequences(ctx context.Context, query string, args ...any) ([]*entity.EmailSequence, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sequences := []*entity.EmailSequence{}
	for rows.Next() {
		seq, err := s.scanSequence(rows)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, seq)
	}
	return sequences, rows.Err()
}

const templateColumns = `id, sequence_id, name, subject, content, day_delay, position, created_at, updated_at`

func (s *PostgresStorage) scanTemplate(row interface{ Scan(...any) error }) (*entity.EmailTemplate, error) {
	var tmpl entity.EmailTemplate
	var sequenceID sql.NullString

	err := row.Scan(&tmpl.ID, &sequenceID, &tmpl.Name, &tmpl.Subject, &tmpl.Content,
		&tmpl.DayDelay, &tmpl.Position, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	tmpl.SequenceID = sequenceID.String
	return &tmpl, nil
}

func (s *PostgresStorage) CreateEmailTemplate(ctx context.Context, tmpl *entity.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (id, sequence_id, name, subject, content, day_delay, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.DB.ExecContext(ctx, query,
		tmpl.ID, nullString(tmpl.SequenceID), tmpl.Name, tmpl.Subject,
		tmpl.Content, tmpl.DayDelay, tmpl.Position, tmpl.CreatedAt, tmpl.UpdatedAt,
	)
	return err
}

func (s *PostgresStorage) GetEmailTemplateByID(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1`
	return s.scanTemplate(s.DB.QueryRowContext(ctx, query, id))
}

func (s *PostgresStorage) GetEmailTemplatesBySequence(ctx context.Context, sequenceID string) ([]*entity.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates
		WHERE sequence_id = $1 ORDER BY position`

	rows, err := s.DB.QueryContext(ctx, query, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*entity.EmailTemplate{}
	for rows.Next() {
		tmpl, err := s.scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (s *PostgresStorage) CreateEmailSend(ctx context.Context, send *entity.EmailSend) error {
	query := `
		INSERT INTO email_sends (id, template_id, lead_id, user_id, sent_at, opened_at, clicked_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.DB.ExecContext(ctx, query,
		send.ID, send.TemplateID, nullString(send.LeadID), nullString(send.UserID),
		send.SentAt, send.OpenedAt, send.ClickedAt, send.Status,
	)
	return err
}

func (s *PostgresStorage) MarkEmailOpened(ctx context.Context, sendID string) error {
	query := `
		UPDATE email_sends
		SET opened_at = COALESCE(opened_at, NOW()), status = 'opened'
		WHERE id = $1
	`
	return s.execExpectingRow(ctx, query, sendID)
}

func (s *PostgresStorage) MarkEmailClicked(ctx context.Context, sendID string) error {
	query := `
		UPDATE email_sends
		SET opened_at = COALESCE(opened_at, NOW()),
			clicked_at = COALESCE(clicked_at, NOW()),
			status = 'clicked'
		WHERE id = $1
	`
	return s.execExpectingRow(ctx, query, sendID)
}

// --- Sessions ---

func (s *PostgresStorage) CreateSession(ctx context.Context, sess *entity.Session) error {
	query := `
		INSERT INTO sessions (sid, sess, expire)
		VALUES ($1, json_build_object('user_id', $2::text, 'role', $3::text), $4)
	`

	_, err := s.DB.ExecContext(ctx, query, sess.SID, sess.UserID, sess.Role, sess.ExpiresAt)
	return err
}

func (s *PostgresStorage) GetSession(ctx context.Context, sid string) (*entity.Session, error) {
	query := `
		SELECT sid, sess->>'user_id', sess->>'role', expire
		FROM sessions
		WHERE sid = $1 AND expire > NOW()
	`

	var sess entity.Session
	err := s.DB.QueryRowContext(ctx, query, sid).Scan(
		&sess.SID, &sess.UserID, &sess.Role, &sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStorage) DeleteSession(ctx context.Context, sid string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
	return err
}

// --- Analytics ---

func (s *PostgresStorage) GetLeadStats(ctx context.Context) (*LeadStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'qualified'),
			COUNT(*) FILTER (WHERE status = 'consultation'),
			COUNT(*) FILTER (WHERE status = 'closed')
		FROM leads
	`

	var stats LeadStats
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.Total, &stats.New, &stats.Qualified, &stats.Consultation, &stats.Closed,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *PostgresStorage) GetInvestmentStats(ctx context.Context) (*InvestmentStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(current_value), 0)
		FROM investments
	`

	var stats InvestmentStats
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalInvestments, &stats.TotalAmount, &stats.TotalCurrentValue,
	)
	if err != nil {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = 'investor'`,
	).Scan(&stats.ActiveInvestors)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *PostgresStorage) GetEmailStats(ctx context.Context) (*EmailStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(opened_at),
			COUNT(clicked_at)
		FROM email_sends
	`

	var stats EmailStats
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalSent, &stats.TotalOpened, &stats.TotalClicked,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalSent > 0 {
		stats.OpenRate = float64(stats.TotalOpened) / float64(stats.TotalSent) * 100
		stats.ClickRate = float64(stats.TotalClicked) / float64(stats.TotalSent) * 100
	}
	return &stats, nil
}

// --- helpers ---

func (s *PostgresStorage) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
