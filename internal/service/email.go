package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"
	emailProvider "github.com/vibe-gaming/passwordless/pkg/email"
	"github.com/vibe-gaming/passwordless/pkg/logger"

	"go.uber.org/zap"
)

// EmailService is the email delivery collaborator. With delivery disabled
// every send reports success, which keeps local setups usable.
type EmailService struct {
	sender  emailProvider.Sender
	config  config.EmailConfig
	enabled bool
}

func NewEmailService(sender emailProvider.Sender, config config.EmailConfig) *EmailService {
	return &EmailService{
		enabled: config.Enabled,
		sender:  sender,
		config:  config,
	}
}

type verificationEmailInput struct {
	VerificationCode string
	ExpiresInMinutes int
}

type magicLinkEmailInput struct {
	Link             string
	ExpiresInMinutes int
}

type welcomeEmailInput struct {
	Name string
}

func (s *EmailService) SendVerificationCode(_ context.Context, email string, code string, ttl time.Duration) error {
	return s.send(email, "Your verification code", s.config.Templates.Verification,
		verificationEmailInput{VerificationCode: code, ExpiresInMinutes: int(ttl / time.Minute)})
}

func (s *EmailService) SendMagicLink(_ context.Context, email string, link string, ttl time.Duration) error {
	return s.send(email, "Your sign-in link", s.config.Templates.MagicLink,
		magicLinkEmailInput{Link: link, ExpiresInMinutes: int(ttl / time.Minute)})
}

func (s *EmailService) SendWelcomeEmail(_ context.Context, email string, name string) error {
	return s.send(email, "Welcome aboard", s.config.Templates.Welcome, welcomeEmailInput{Name: name})
}

func (s *EmailService) send(to string, subject string, template string, data interface{}) error {
	if !s.enabled {
		logger.Warn("email delivery disabled (EMAIL_ENABLED=false), message dropped", zap.String("subject", subject))
		return nil
	}

	sendInput := emailProvider.SendEmailInput{Subject: subject, To: to}

	if err := sendInput.GenerateBodyFromHTML(s.config.TemplatesDir, template, data); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	return s.sender.Send(sendInput)
}
