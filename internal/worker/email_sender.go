package worker

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vibe-gaming/passwordless/internal/service"
)

type emailSender struct {
	mailer service.WelcomeMailer
}

// newEmailSender takes the inline mailer: the queued welcome mail must not be
// enqueued again.
func newEmailSender(mailer service.WelcomeMailer) *emailSender {
	return &emailSender{
		mailer: mailer,
	}
}

func (s *emailSender) SendWelcomeEmail(ctx context.Context, email string, name string) error {
	if err := s.mailer.SendWelcomeEmail(ctx, email, name); err != nil {
		return errors.Wrap(err, "send welcome email failed")
	}

	return nil
}
