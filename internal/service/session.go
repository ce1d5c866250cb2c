package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/pkg/auth"
	"github.com/vibe-gaming/passwordless/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNameLength = 255

type sessionService struct {
	identityRepository repository.Identities
	sessionRepository  repository.Sessions
	tokenManager       auth.TokenManager
	welcome            WelcomeMailer
	minNameLength      int
	now                func() time.Time
}

func newSessionService(
	identityRepository repository.Identities,
	sessionRepository repository.Sessions,
	tokenManager auth.TokenManager,
	welcome WelcomeMailer,
	minNameLength int,
	now func() time.Time,
) *sessionService {
	return &sessionService{
		identityRepository: identityRepository,
		sessionRepository:  sessionRepository,
		tokenManager:       tokenManager,
		welcome:            welcome,
		minNameLength:      minNameLength,
		now:                now,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, identityID uuid.UUID, client domain.ClientInfo) (*Session, error) {
	identity, err := s.identityRepository.GetOneByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("get identity by id failed: %w", err)
	}

	return s.createSession(ctx, identity, client)
}

// createSession issues a fixed lifetime token and writes its audit row.
func (s *sessionService) createSession(ctx context.Context, identity *domain.Identity, client domain.ClientInfo) (*Session, error) {
	token, err := s.tokenManager.NewSession(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("generate session token failed: %w", err)
	}

	audit := &domain.Session{
		ID:         token.ID,
		IdentityID: identity.ID,
		UserAgent:  client.UserAgent,
		IP:         client.IP,
		IssuedAt:   token.IssuedAt,
		ExpiresAt:  token.ExpiresAt,
	}

	if err := s.sessionRepository.Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	return &Session{
		Token:      token.Token,
		IdentityID: identity.ID,
		Email:      identity.Email,
		IssuedAt:   token.IssuedAt,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// ValidateSession has no revocation list to consult: a token stays valid
// until it expires.
func (s *sessionService) ValidateSession(ctx context.Context, token string) (*domain.Identity, *Session, error) {
	claims, err := s.tokenManager.ParseSession(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, ErrSessionInvalid
	}

	identityID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, ErrSessionInvalid
	}

	identity, err := s.identityRepository.GetOneByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("get identity by id failed: %w", err)
	}

	session := &Session{
		Token:      token,
		IdentityID: identity.ID,
		Email:      identity.Email,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity, session, nil
}

// SignIn turns a verification into the next login step: a session for a
// known identity, a profile ticket for a new one. The credential is already
// consumed at this point, so a store failure here leaves the user to request
// a new one.
func (s *sessionService) SignIn(ctx context.Context, verification *Verification, client domain.ClientInfo) (*SignInResult, error) {
	res := &SignInResult{Verification: *verification}

	if verification.IsNewIdentity || verification.IdentityID == nil {
		ticket, expiresAt, err := s.tokenManager.NewProfileTicket(verification.Email)
		if err != nil {
			return nil, fmt.Errorf("generate profile ticket failed: %w", err)
		}

		res.IsNewIdentity = true
		res.ProfileTicket = &ProfileTicket{Ticket: ticket, Email: verification.Email, ExpiresAt: expiresAt}

		return res, nil
	}

	session, err := s.CreateSession(ctx, *verification.IdentityID, client)
	if err != nil {
		return nil, err
	}
	res.Session = session

	return res, nil
}

func (s *sessionService) CompleteProfile(ctx context.Context, ticket string, name string, client domain.ClientInfo) (*domain.Identity, *Session, error) {
	email, err := s.tokenManager.ParseProfileTicket(ticket)
	if err != nil {
		return nil, nil, ErrInvalidOrExpired
	}

	return s.CompleteNewIdentity(ctx, email, name, client)
}

// CompleteNewIdentity expects email to be verified already. A failing
// welcome email does not fail the call.
func (s *sessionService) CompleteNewIdentity(ctx context.Context, rawEmail string, name string, client domain.ClientInfo) (*domain.Identity, *Session, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, nil, err
	}

	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < s.minNameLength || n > maxNameLength {
		return nil, nil, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("must be between %d and %d characters", s.minNameLength, maxNameLength),
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("generate identity id failed: %w", err)
	}

	now := s.now().UTC()
	identity := &domain.Identity{
		ID:            id,
		Email:         email,
		Name:          name,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.identityRepository.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, nil, ErrIdentityAlreadyExists
		}
		return nil, nil, fmt.Errorf("create identity failed: %w", err)
	}

	session, err := s.createSession(ctx, identity, client)
	if err != nil {
		return nil, nil, err
	}

	if err := s.welcome.SendWelcomeEmail(ctx, email, name); err != nil {
		logger.Warn("send welcome email failed", zap.Error(err), zap.String("email", email))
	}

	logger.Info("identity created", zap.String("identity_id", identity.ID.String()))

	return identity, session, nil
}

func (s *sessionService) CheckEmailExists(ctx context.Context, rawEmail string) (bool, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return false, err
	}

	if _, err := s.identityRepository.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get identity by email failed: %w", err)
	}

	return true, nil
}
