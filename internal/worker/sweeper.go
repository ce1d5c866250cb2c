package worker

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vibe-gaming/passwordless/internal/service"
	"github.com/vibe-gaming/passwordless/pkg/logger"
)

type sweeper struct {
	sweeper service.Sweeper
}

func newSweeper(s service.Sweeper) *sweeper {
	return &sweeper{sweeper: s}
}

func (s *sweeper) SweepExpired(ctx context.Context) error {
	res, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return errors.Wrap(err, "sweep expired credentials failed")
	}

	logger.Info("expired credentials swept",
		zap.Int64("codes", res.Codes),
		zap.Int64("links", res.Links),
		zap.Int64("attempts", res.Attempts),
	)

	return nil
}
