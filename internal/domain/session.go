package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the audit record of an issued session token. It is not consulted
// when a token is validated.
type Session struct {
	ID         uuid.UUID `json:"id" db:"id"`
	IdentityID uuid.UUID `json:"identity_id" db:"identity_id"`
	UserAgent  string    `json:"user_agent" db:"user_agent"`
	IP         string    `json:"ip" db:"ip"`
	IssuedAt   time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
}
