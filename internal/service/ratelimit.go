package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/repository"
)

type IssueKind string

const (
	IssueCode      IssueKind = "code"
	IssueMagicLink IssueKind = "magic_link"
)

type Decision struct {
	Allowed         bool
	CooldownMinutes int
	Reason          LimitReason
}

type ceiling struct {
	window time.Duration
	max    int
}

type issuePolicy struct {
	history  repository.IssuanceHistory
	ceilings []ceiling
	backoff  time.Duration
	cooldown time.Duration
}

// rateLimiter only reads history and takes no locks. Two concurrent requests
// may both pass a ceiling, which is accepted.
type rateLimiter struct {
	policies map[IssueKind]issuePolicy
	attempts repository.LoginAttempts
	lockout  config.LockoutConfig
	now      func() time.Time
}

func newRateLimiter(
	codes repository.VerificationCodes,
	links repository.MagicLinks,
	attempts repository.LoginAttempts,
	authConfig config.AuthConfig,
	now func() time.Time,
) *rateLimiter {
	return &rateLimiter{
		policies: map[IssueKind]issuePolicy{
			IssueCode: {
				history: codes,
				ceilings: []ceiling{
					{window: time.Hour, max: authConfig.Code.HourlyLimit},
					{window: 24 * time.Hour, max: authConfig.Code.DailyLimit},
				},
				backoff:  authConfig.Code.Backoff,
				cooldown: authConfig.Code.ResendCooldown,
			},
			IssueMagicLink: {
				history: links,
				ceilings: []ceiling{
					{window: time.Hour, max: authConfig.MagicLink.HourlyLimit},
				},
				backoff:  authConfig.MagicLink.Backoff,
				cooldown: authConfig.MagicLink.ResendCooldown,
			},
		},
		attempts: attempts,
		lockout:  authConfig.Lockout,
		now:      now,
	}
}

func (l *rateLimiter) CanIssue(ctx context.Context, email string, kind IssueKind) (Decision, error) {
	policy, ok := l.policies[kind]
	if !ok {
		return Decision{}, fmt.Errorf("unknown issue kind %q", kind)
	}

	now := l.now()

	for _, c := range policy.ceilings {
		if c.max <= 0 {
			continue
		}

		count, err := policy.history.CountCreatedSince(ctx, email, now.Add(-c.window))
		if err != nil {
			return Decision{}, fmt.Errorf("count %s issuances failed: %w", kind, err)
		}

		if count >= c.max {
			return Decision{CooldownMinutes: ceilMinutes(policy.backoff), Reason: LimitReasonCeiling}, nil
		}
	}

	if policy.cooldown <= 0 {
		return Decision{Allowed: true}, nil
	}

	latest, err := policy.history.GetLatestCreatedAt(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Decision{Allowed: true}, nil
		}
		return Decision{}, fmt.Errorf("get latest %s issuance failed: %w", kind, err)
	}

	elapsed := now.Sub(latest)
	if elapsed < policy.cooldown {
		remaining := policy.cooldown - elapsed
		if remaining > policy.cooldown {
			remaining = policy.cooldown
		}
		return Decision{CooldownMinutes: ceilMinutes(remaining), Reason: LimitReasonCooldown}, nil
	}

	return Decision{Allowed: true}, nil
}

// IsLocked guards verification, not issuance.
func (l *rateLimiter) IsLocked(ctx context.Context, email string) (bool, error) {
	if l.lockout.Threshold <= 0 {
		return false, nil
	}

	failed, err := l.attempts.CountFailedSince(ctx, email, l.now().Add(-l.lockout.Window))
	if err != nil {
		return false, fmt.Errorf("count failed attempts failed: %w", err)
	}

	return failed >= l.lockout.Threshold, nil
}

// ceilMinutes never reports 0 for a positive wait.
func ceilMinutes(d time.Duration) int {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
