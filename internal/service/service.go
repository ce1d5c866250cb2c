package service

import (
	"context"
	"time"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/internal/repository"
	"github.com/vibe-gaming/passwordless/pkg/auth"
	emailProvider "github.com/vibe-gaming/passwordless/pkg/email"
	"github.com/vibe-gaming/passwordless/pkg/hash"
	"github.com/vibe-gaming/passwordless/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Codes      Codes
	MagicLinks MagicLinks
	Sessions   Sessions
	Limiter    RateLimiter
	Sweeper    Sweeper
	Emails     *EmailService
}

type Deps struct {
	Config       *config.Config
	Repos        *repository.Repositories
	TokenManager auth.TokenManager
	OtpGenerator otp.Generator
	TokenHasher  hash.TokenHasher
	EmailSender  emailProvider.Sender
	// WelcomeMailer defaults to sending through EmailService inline.
	WelcomeMailer WelcomeMailer
	Clock         func() time.Time
}

func NewServices(deps Deps) *Services {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	emails := NewEmailService(deps.EmailSender, deps.Config.Email)

	welcome := deps.WelcomeMailer
	if welcome == nil {
		welcome = emails
	}

	limiter := newRateLimiter(
		deps.Repos.VerificationCodes,
		deps.Repos.MagicLinks,
		deps.Repos.LoginAttempts,
		deps.Config.Auth,
		now,
	)
	sweeper := newSweeper(
		deps.Repos.VerificationCodes,
		deps.Repos.MagicLinks,
		deps.Repos.LoginAttempts,
		deps.Config.Worker.AttemptsRetention,
		now,
	)
	verifier := newCredentialVerifier(deps.Repos.LoginAttempts, deps.Repos.Identities, limiter, deps.Config.Auth.Lockout, now)

	return &Services{
		Codes: newCodeService(
			deps.Repos.VerificationCodes,
			limiter,
			verifier,
			sweeper,
			deps.OtpGenerator,
			emails,
			deps.Config.Auth.Code,
			now,
		),
		MagicLinks: newMagicLinkService(
			deps.Repos.MagicLinks,
			limiter,
			verifier,
			deps.OtpGenerator,
			deps.TokenHasher,
			emails,
			deps.Config.Auth.MagicLink,
			now,
		),
		Sessions: newSessionService(
			deps.Repos.Identities,
			deps.Repos.Sessions,
			deps.TokenManager,
			welcome,
			deps.Config.Auth.MinNameLength,
			now,
		),
		Limiter: limiter,
		Sweeper: sweeper,
		Emails:  emails,
	}
}

// Verification is the outcome of a successful code or link check.
type Verification struct {
	Email         string
	IsNewIdentity bool
	IdentityID    *uuid.UUID
}

type Session struct {
	Token      string
	IdentityID uuid.UUID
	Email      string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

type ProfileTicket struct {
	Ticket    string
	Email     string
	ExpiresAt time.Time
}

// SignInResult holds a Session for a known identity, or a ProfileTicket when
// the identity still has to be created.
type SignInResult struct {
	Verification
	Session       *Session
	ProfileTicket *ProfileTicket
}

type Codes interface {
	RequestCode(ctx context.Context, email string, purpose domain.CodePurpose) error
	VerifyCode(ctx context.Context, email string, code string, client domain.ClientInfo) (*Verification, error)
}

type MagicLinks interface {
	// RequestMagicLink returns the emailed link; it must not be echoed to
	// the requester.
	RequestMagicLink(ctx context.Context, email string) (string, error)
	VerifyMagicLink(ctx context.Context, token string, email string, client domain.ClientInfo) (*Verification, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, identityID uuid.UUID, client domain.ClientInfo) (*Session, error)
	ValidateSession(ctx context.Context, token string) (*domain.Identity, *Session, error)
	SignIn(ctx context.Context, verification *Verification, client domain.ClientInfo) (*SignInResult, error)
	CompleteProfile(ctx context.Context, ticket string, name string, client domain.ClientInfo) (*domain.Identity, *Session, error)
	CompleteNewIdentity(ctx context.Context, email string, name string, client domain.ClientInfo) (*domain.Identity, *Session, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

type RateLimiter interface {
	CanIssue(ctx context.Context, email string, kind IssueKind) (Decision, error)
	IsLocked(ctx context.Context, email string) (bool, error)
}

type Sweeper interface {
	Sweep(ctx context.Context) (*SweepResult, error)
	SweepExpiredCodesAsync(ctx context.Context)
}

type VerificationMailer interface {
	SendVerificationCode(ctx context.Context, email string, code string, ttl time.Duration) error
}

type MagicLinkMailer interface {
	SendMagicLink(ctx context.Context, email string, link string, ttl time.Duration) error
}

type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, email string, name string) error
}
