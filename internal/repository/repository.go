package repository

import (
	"context"
	"time"

	"github.com/vibe-gaming/passwordless/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Identities        Identities
	VerificationCodes VerificationCodes
	MagicLinks        MagicLinks
	LoginAttempts     LoginAttempts
	Sessions          Sessions
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Identities:        newIdentityRepository(db),
		VerificationCodes: newVerificationCodeRepository(db),
		MagicLinks:        newMagicLinkRepository(db),
		LoginAttempts:     newLoginAttemptRepository(db),
		Sessions:          newSessionRepository(db),
	}
}

// Identities is the identity directory, keyed by normalized email.
type Identities interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
}

// IssuanceHistory is the time indexed view the rate limiter reads.
type IssuanceHistory interface {
	CountCreatedSince(ctx context.Context, email string, since time.Time) (int, error)
	// GetLatestCreatedAt returns domain.ErrNotFound when nothing was issued.
	GetLatestCreatedAt(ctx context.Context, email string) (time.Time, error)
}

type VerificationCodes interface {
	IssuanceHistory
	Create(ctx context.Context, code *domain.VerificationCode) error
	// GetLatestByEmail returns the newest code for email, used or not.
	GetLatestByEmail(ctx context.Context, email string) (*domain.VerificationCode, error)
	// MarkUsed flips used only if it is still false; a lost race yields
	// domain.ErrNoRowsAffected.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type MagicLinks interface {
	IssuanceHistory
	Create(ctx context.Context, link *domain.MagicLink) error
	GetUnusedByTokenHash(ctx context.Context, tokenHash string, email string) (*domain.MagicLink, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type LoginAttempts interface {
	Create(ctx context.Context, attempt *domain.LoginAttempt) error
	CountFailedSince(ctx context.Context, email string, since time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type Sessions interface {
	Create(ctx context.Context, session *domain.Session) error
}
