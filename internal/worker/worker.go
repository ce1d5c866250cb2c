package worker

import (
	"context"

	"github.com/vibe-gaming/passwordless/internal/service"
)

type Workers struct {
	EmailSender EmailSender
	Sweeper     Sweeper
}

type Deps struct {
	Services *service.Services
}

type EmailSender interface {
	SendWelcomeEmail(ctx context.Context, email string, name string) error
}

type Sweeper interface {
	SweepExpired(ctx context.Context) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.Services.Emails),
		Sweeper:     newSweeper(deps.Services.Sweeper),
	}
}
