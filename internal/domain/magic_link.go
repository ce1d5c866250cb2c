package domain

import (
	"time"

	"github.com/google/uuid"
)

type MagicLink struct {
	ID        uuid.UUID  `db:"id"`
	Email     string     `db:"email"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	Used      bool       `db:"used"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (l *MagicLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
