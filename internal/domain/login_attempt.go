package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type LoginAttempt struct {
	ID        uuid.UUID      `db:"id"`
	Email     string         `db:"email"`
	Success   bool           `db:"success"`
	IPAddress sql.NullString `db:"ip_address"`
	UserAgent sql.NullString `db:"user_agent"`
	CreatedAt time.Time      `db:"created_at"`
}

// ClientInfo describes the caller of an auth operation, for the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}
