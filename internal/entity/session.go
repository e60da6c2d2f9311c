package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session backs the admin/investor login. Stored in its own table with a JSON
// payload column so the schema matches what the frontend session store expects.
type Session struct {
	SID       string    `json:"sid"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSession(userID, role string, ttl time.Duration) *Session {
	return &Session{
		SID:       uuid.New().String(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
