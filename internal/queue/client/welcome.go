package client

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vibe-gaming/passwordless/internal/queue/task"
	"github.com/vibe-gaming/passwordless/pkg/logger"
)

var ErrNoClient = errors.New("asynq client is not configured")

// WelcomeMailer hands welcome emails to the worker process instead of
// sending them inline.
type WelcomeMailer struct{}

func (WelcomeMailer) SendWelcomeEmail(ctx context.Context, email string, name string) error {
	c := GetClient(ctx)
	if c == nil {
		return ErrNoClient
	}

	t, err := task.NewSendWelcomeEmailTask(email, name)
	if err != nil {
		return errors.Wrap(err, "create welcome email task failed")
	}

	info, err := c.EnqueueContext(ctx, t)
	if err != nil {
		return errors.Wrap(err, "enqueue welcome email task failed")
	}

	logger.Debug("welcome email enqueued", zap.String("task_id", info.ID), zap.String("queue", info.Queue))

	return nil
}
