package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	audienceSession = "session"
	audienceProfile = "profile"
)

var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenManager signs and parses session tokens and profile tickets.
type TokenManager interface {
	NewSession(identityID uuid.UUID, email string) (*SessionToken, error)
	ParseSession(token string) (*SessionClaims, error)
	NewProfileTicket(email string) (string, time.Time, error)
	ParseProfileTicket(ticket string) (string, error)
}

type SessionToken struct {
	Token     string
	ID        uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	signingKey       []byte
	issuer           string
	sessionTTL       time.Duration
	profileTicketTTL time.Duration
	now              func() time.Time
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if cfg.SessionTTL == 0 {
		return nil, errors.New("empty session ttl")
	}

	if cfg.ProfileTicketTTL == 0 {
		return nil, errors.New("empty profile ticket ttl")
	}

	return &Manager{
		signingKey:       []byte(cfg.SigningKey),
		issuer:           cfg.Issuer,
		sessionTTL:       cfg.SessionTTL,
		profileTicketTTL: cfg.ProfileTicketTTL,
		now:              time.Now,
	}, nil
}

// NewSession issues a token with a fixed lifetime. It is never extended.
func (m *Manager) NewSession(identityID uuid.UUID, email string) (*SessionToken, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id failed: %w", err)
	}

	issuedAt := m.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.sessionTTL)

	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Issuer:    m.issuer,
			Subject:   identityID.String(),
			Audience:  jwt.ClaimStrings{audienceSession},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign session failed: %w", err)
	}

	return &SessionToken{
		Token:     token,
		ID:        id,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *Manager) ParseSession(token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := m.parse(token, audienceSession, &claims); err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrTokenInvalid
	}

	return &claims, nil
}

// NewProfileTicket proves that email was verified a moment ago; it lets a new
// identity finish its profile.
func (m *Manager) NewProfileTicket(email string) (string, time.Time, error) {
	issuedAt := m.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(m.profileTicketTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   email,
		Audience:  jwt.ClaimStrings{audienceProfile},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	ticket, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign profile ticket failed: %w", err)
	}

	return ticket, expiresAt, nil
}

func (m *Manager) ParseProfileTicket(ticket string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := m.parse(ticket, audienceProfile, &claims); err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

func (m *Manager) parse(token string, audience string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	return nil
}
