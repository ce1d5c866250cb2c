package domain

import (
	"time"

	"github.com/google/uuid"
)

type CodePurpose string

const (
	CodePurposeLogin  CodePurpose = "login"
	CodePurposeSignup CodePurpose = "signup"
)

func (p CodePurpose) Valid() bool {
	return p == CodePurposeLogin || p == CodePurposeSignup
}

type VerificationCode struct {
	ID        uuid.UUID   `db:"id"`
	Email     string      `db:"email"`
	Code      string      `db:"code"`
	Purpose   CodePurpose `db:"purpose"`
	ExpiresAt time.Time   `db:"expires_at"`
	Used      bool        `db:"used"`
	UsedAt    *time.Time  `db:"used_at"`
	CreatedAt time.Time   `db:"created_at"`
}

// Expired is true from ExpiresAt onwards.
func (c *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
