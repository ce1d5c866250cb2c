package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/pkg/hash"
	"github.com/vibe-gaming/passwordless/pkg/logger"
	"github.com/vibe-gaming/passwordless/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type magicLinkService struct {
	links     repository.MagicLinks
	limiter   RateLimiter
	verifier  *credentialVerifier
	generator otp.Generator
	hasher    hash.TokenHasher
	mailer    MagicLinkMailer
	config    config.MagicLinkConfig
	now       func() time.Time
}

func newMagicLinkService(
	links repository.MagicLinks,
	limiter RateLimiter,
	verifier *credentialVerifier,
	generator otp.Generator,
	hasher hash.TokenHasher,
	mailer MagicLinkMailer,
	config config.MagicLinkConfig,
	now func() time.Time,
) *magicLinkService {
	return &magicLinkService{
		links:     links,
		limiter:   limiter,
		verifier:  verifier,
		generator: generator,
		hasher:    hasher,
		mailer:    mailer,
		config:    config,
		now:       now,
	}
}

func (s *magicLinkService) RequestMagicLink(ctx context.Context, rawEmail string) (string, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return "", err
	}

	decision, err := s.limiter.CanIssue(ctx, email, IssueMagicLink)
	if err != nil {
		return "", fmt.Errorf("check magic link issuance failed: %w", err)
	}
	if !decision.Allowed {
		return "", &RateLimitedError{CooldownMinutes: decision.CooldownMinutes, Reason: decision.Reason}
	}

	token, err := s.generator.RandomToken()
	if err != nil {
		return "", fmt.Errorf("generate magic link token failed: %w", err)
	}

	link, err := s.buildLink(token, email)
	if err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate magic link id failed: %w", err)
	}

	now := s.now().UTC()
	row := &domain.MagicLink{
		ID:        id,
		Email:     email,
		TokenHash: s.hasher.Hash(token),
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}

	if err := s.links.Create(ctx, row); err != nil {
		return "", fmt.Errorf("create magic link failed: %w", err)
	}

	if err := s.mailer.SendMagicLink(ctx, email, link, s.config.TTL); err != nil {
		logger.Error("send magic link failed", zap.Error(err), zap.String("email", email))

		if delErr := s.links.Delete(context.WithoutCancel(ctx), row.ID); delErr != nil {
			logger.Error("rollback magic link failed", zap.Error(delErr), zap.String("link_id", row.ID.String()))
		}

		return "", fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	logger.Info("magic link issued", zap.String("email", email))

	return link, nil
}

func (s *magicLinkService) VerifyMagicLink(ctx context.Context, token string, rawEmail string, client domain.ClientInfo) (*Verification, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &ValidationError{Field: "token", Message: "is required"}
	}

	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.checkLock(ctx, email); err != nil {
		return nil, err
	}

	link, err := s.links.GetUnusedByTokenHash(ctx, s.hasher.Hash(token), email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.verifier.fail(ctx, email, client)
		}
		return nil, fmt.Errorf("get magic link failed: %w", err)
	}

	now := s.now().UTC()
	if link.Expired(now) {
		return nil, s.verifier.fail(ctx, email, client)
	}

	if err := s.links.MarkUsed(ctx, link.ID, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			// a concurrent verify consumed it first; double submits do not count toward lockout
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("mark magic link used failed: %w", err)
	}

	return s.verifier.succeed(ctx, email, client)
}

func (s *magicLinkService) buildLink(token string, email string) (string, error) {
	u, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse magic link base url failed: %w", err)
	}

	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
