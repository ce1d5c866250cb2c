package processor

import (
	"context"
	"fmt"

	"github.com/vibe-gaming/passwordless/internal/worker"

	"github.com/hibiken/asynq"
)

type sweepExpiredProcessor struct {
	workers *worker.Workers
}

func NewSweepExpiredProcessor(workers *worker.Workers) *sweepExpiredProcessor {
	return &sweepExpiredProcessor{
		workers: workers,
	}
}

func (p *sweepExpiredProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if err := p.workers.Sweeper.SweepExpired(ctx); err != nil {
		return fmt.Errorf("sweep expired failed: %w", err)
	}

	return nil
}
