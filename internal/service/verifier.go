package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/repository"

	"github.com/google/uuid"
)

// credentialVerifier holds the steps shared by code and link verification:
// the lockout gate, the attempt audit trail and the identity lookup.
type credentialVerifier struct {
	attempts   repository.LoginAttempts
	identities repository.Identities
	limiter    RateLimiter
	lockout    config.LockoutConfig
	now        func() time.Time
}

func newCredentialVerifier(
	attempts repository.LoginAttempts,
	identities repository.Identities,
	limiter RateLimiter,
	lockout config.LockoutConfig,
	now func() time.Time,
) *credentialVerifier {
	return &credentialVerifier{
		attempts:   attempts,
		identities: identities,
		limiter:    limiter,
		lockout:    lockout,
		now:        now,
	}
}

// checkLock runs before any credential table is read.
func (v *credentialVerifier) checkLock(ctx context.Context, email string) error {
	locked, err := v.limiter.IsLocked(ctx, email)
	if err != nil {
		return err
	}

	if locked {
		return &RateLimitedError{CooldownMinutes: ceilMinutes(v.lockout.Window), Reason: LimitReasonLocked}
	}

	return nil
}

// fail records the failed attempt and returns ErrInvalidOrExpired.
func (v *credentialVerifier) fail(ctx context.Context, email string, client domain.ClientInfo) error {
	if err := v.record(ctx, email, false, client); err != nil {
		return err
	}

	return ErrInvalidOrExpired
}

func (v *credentialVerifier) succeed(ctx context.Context, email string, client domain.ClientInfo) (*Verification, error) {
	if err := v.record(ctx, email, true, client); err != nil {
		return nil, err
	}

	identity, err := v.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Verification{Email: email, IsNewIdentity: true}, nil
		}
		return nil, fmt.Errorf("get identity by email failed: %w", err)
	}

	id := identity.ID

	return &Verification{Email: email, IsNewIdentity: false, IdentityID: &id}, nil
}

func (v *credentialVerifier) record(ctx context.Context, email string, success bool, client domain.ClientInfo) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate login attempt id failed: %w", err)
	}

	attempt := &domain.LoginAttempt{
		ID:        id,
		Email:     email,
		Success:   success,
		IPAddress: sql.NullString{String: client.IP, Valid: client.IP != ""},
		UserAgent: sql.NullString{String: client.UserAgent, Valid: client.UserAgent != ""},
		CreatedAt: v.now().UTC(),
	}

	if err := v.attempts.Create(ctx, attempt); err != nil {
		return fmt.Errorf("record login attempt failed: %w", err)
	}

	return nil
}
