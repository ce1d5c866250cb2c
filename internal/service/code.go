package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/pkg/logger"
	"github.com/vibe-gaming/passwordless/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type codeService struct {
	codes     repository.VerificationCodes
	limiter   RateLimiter
	verifier  *credentialVerifier
	sweeper   Sweeper
	generator otp.Generator
	mailer    VerificationMailer
	config    config.CodeConfig
	now       func() time.Time
}

func newCodeService(
	codes repository.VerificationCodes,
	limiter RateLimiter,
	verifier *credentialVerifier,
	sweeper Sweeper,
	generator otp.Generator,
	mailer VerificationMailer,
	config config.CodeConfig,
	now func() time.Time,
) *codeService {
	return &codeService{
		codes:     codes,
		limiter:   limiter,
		verifier:  verifier,
		sweeper:   sweeper,
		generator: generator,
		mailer:    mailer,
		config:    config,
		now:       now,
	}
}

// RequestCode issues a new code and mails it. Issuance is all or nothing: if
// the mail cannot be sent the stored code is removed again.
func (s *codeService) RequestCode(ctx context.Context, rawEmail string, purpose domain.CodePurpose) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	if !purpose.Valid() {
		return &ValidationError{Field: "purpose", Message: "must be login or signup"}
	}

	decision, err := s.limiter.CanIssue(ctx, email, IssueCode)
	if err != nil {
		return fmt.Errorf("check code issuance failed: %w", err)
	}
	if !decision.Allowed {
		return &RateLimitedError{CooldownMinutes: decision.CooldownMinutes, Reason: decision.Reason}
	}

	value, err := s.generator.RandomCode(s.config.Length)
	if err != nil {
		return fmt.Errorf("generate code failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate code id failed: %w", err)
	}

	now := s.now().UTC()
	code := &domain.VerificationCode{
		ID:        id,
		Email:     email,
		Code:      value,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}

	if err := s.codes.Create(ctx, code); err != nil {
		return fmt.Errorf("create verification code failed: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, value, s.config.TTL); err != nil {
		logger.Error("send verification code failed", zap.Error(err), zap.String("email", email))

		if delErr := s.codes.Delete(context.WithoutCancel(ctx), code.ID); delErr != nil {
			logger.Error("rollback verification code failed", zap.Error(delErr), zap.String("code_id", code.ID.String()))
		}

		return fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	logger.Info("verification code issued", zap.String("email", email), zap.String("purpose", string(purpose)))

	return nil
}

// VerifyCode checks code against the newest code issued for email. Older
// codes are superseded as soon as a new one is issued.
func (s *codeService) VerifyCode(ctx context.Context, rawEmail string, code string, client domain.ClientInfo) (*Verification, error) {
	if !otp.IsNumeric(code, s.config.Length) {
		return nil, &ValidationError{Field: "code", Message: fmt.Sprintf("must be exactly %d digits", s.config.Length)}
	}

	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.checkLock(ctx, email); err != nil {
		return nil, err
	}

	s.sweeper.SweepExpiredCodesAsync(ctx)

	current, err := s.codes.GetLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.verifier.fail(ctx, email, client)
		}
		return nil, fmt.Errorf("get verification code failed: %w", err)
	}

	now := s.now().UTC()
	if current.Used || current.Expired(now) || subtle.ConstantTimeCompare([]byte(current.Code), []byte(code)) != 1 {
		return nil, s.verifier.fail(ctx, email, client)
	}

	if err := s.codes.MarkUsed(ctx, current.ID, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			// a concurrent verify consumed it first; double submits do not count toward lockout
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("mark verification code used failed: %w", err)
	}

	return s.verifier.succeed(ctx, email, client)
}
