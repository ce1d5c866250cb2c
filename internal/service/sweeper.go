package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/pkg/logger"

	"go.uber.org/zap"
)

const asyncSweepTimeout = 5 * time.Second

type SweepResult struct {
	Codes    int64
	Links    int64
	Attempts int64
}

// sweeper removes rows nobody can use anymore. Correctness never depends on
// it: verification checks expiry itself.
type sweeper struct {
	codes             repository.VerificationCodes
	links             repository.MagicLinks
	attempts          repository.LoginAttempts
	attemptsRetention time.Duration
	now               func() time.Time
}

func newSweeper(
	codes repository.VerificationCodes,
	links repository.MagicLinks,
	attempts repository.LoginAttempts,
	attemptsRetention time.Duration,
	now func() time.Time,
) *sweeper {
	return &sweeper{
		codes:             codes,
		links:             links,
		attempts:          attempts,
		attemptsRetention: attemptsRetention,
		now:               now,
	}
}

func (s *sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now().UTC()

	var (
		res SweepResult
		err error
	)

	res.Codes, err = s.codes.DeleteExpired(ctx, now)
	if err != nil {
		return &res, fmt.Errorf("sweep verification codes failed: %w", err)
	}

	res.Links, err = s.links.DeleteExpired(ctx, now)
	if err != nil {
		return &res, fmt.Errorf("sweep magic links failed: %w", err)
	}

	if s.attemptsRetention > 0 {
		res.Attempts, err = s.attempts.DeleteOlderThan(ctx, now.Add(-s.attemptsRetention))
		if err != nil {
			return &res, fmt.Errorf("sweep login attempts failed: %w", err)
		}
	}

	return &res, nil
}

// SweepExpiredCodesAsync deletes expired codes without blocking the caller.
func (s *sweeper) SweepExpiredCodesAsync(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncSweepTimeout)

	go func() {
		defer cancel()

		n, err := s.codes.DeleteExpired(ctx, s.now().UTC())
		if err != nil {
			logger.Warn("expired codes sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Debug("expired codes swept", zap.Int64("count", n))
		}
	}()
}
