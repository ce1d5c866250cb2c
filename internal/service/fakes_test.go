package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/domain"
	"github.com/vibe-gaming/passwordless/pkg/auth"
	"github.com/vibe-gaming/passwordless/pkg/hash"
	"github.com/vibe-gaming/passwordless/pkg/otp"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeCodes mirrors the SQL semantics, including the conditional update in
// MarkUsed.
type fakeCodes struct {
	mu          sync.Mutex
	rows        []domain.VerificationCode
	latestCalls int
	// beforeMarkUsed runs outside the lock, letting a test slip in a competing consumer.
	beforeMarkUsed func(id uuid.UUID)
}

func (f *fakeCodes) consume(id uuid.UUID, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Used = true
			f.rows[i].UsedAt = &at
		}
	}
}

func (f *fakeCodes) Create(_ context.Context, code *domain.VerificationCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *code)
	return nil
}

func (f *fakeCodes) GetLatestByEmail(_ context.Context, email string) (*domain.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++

	var latest *domain.VerificationCode
	for i := range f.rows {
		r := f.rows[i]
		if r.Email != email {
			continue
		}
		if latest == nil || !r.CreatedAt.Before(latest.CreatedAt) {
			latest = &r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeCodes) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	if f.beforeMarkUsed != nil {
		f.beforeMarkUsed(id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && !f.rows[i].Used {
			f.rows[i].Used = true
			f.rows[i].UsedAt = &usedAt
			return nil
		}
	}
	return domain.ErrNoRowsAffected
}

func (f *fakeCodes) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCodes) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeCodes) CountCreatedSince(_ context.Context, email string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.Email == email && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCodes) GetLatestCreatedAt(_ context.Context, email string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest time.Time
	for _, r := range f.rows {
		if r.Email == email && r.CreatedAt.After(latest) {
			latest = r.CreatedAt
		}
	}
	if latest.IsZero() {
		return time.Time{}, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeCodes) snapshot() []domain.VerificationCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.VerificationCode, len(f.rows))
	copy(out, f.rows)
	return out
}

type fakeLinks struct {
	mu             sync.Mutex
	rows           []domain.MagicLink
	beforeMarkUsed func(id uuid.UUID)
}

func (f *fakeLinks) consume(id uuid.UUID, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Used = true
			f.rows[i].UsedAt = &at
		}
	}
}

func (f *fakeLinks) Create(_ context.Context, link *domain.MagicLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *link)
	return nil
}

func (f *fakeLinks) GetUnusedByTokenHash(_ context.Context, tokenHash string, email string) (*domain.MagicLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		r := f.rows[i]
		if r.TokenHash == tokenHash && r.Email == email && !r.Used {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLinks) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	if f.beforeMarkUsed != nil {
		f.beforeMarkUsed(id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && !f.rows[i].Used {
			f.rows[i].Used = true
			f.rows[i].UsedAt = &usedAt
			return nil
		}
	}
	return domain.ErrNoRowsAffected
}

func (f *fakeLinks) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLinks) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeLinks) CountCreatedSince(_ context.Context, email string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.Email == email && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeLinks) GetLatestCreatedAt(_ context.Context, email string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest time.Time
	for _, r := range f.rows {
		if r.Email == email && r.CreatedAt.After(latest) {
			latest = r.CreatedAt
		}
	}
	if latest.IsZero() {
		return time.Time{}, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeLinks) snapshot() []domain.MagicLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.MagicLink, len(f.rows))
	copy(out, f.rows)
	return out
}

type fakeAttempts struct {
	mu   sync.Mutex
	rows []domain.LoginAttempt
}

func (f *fakeAttempts) Create(_ context.Context, attempt *domain.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *attempt)
	return nil
}

func (f *fakeAttempts) CountFailedSince(_ context.Context, email string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.Email == email && !r.Success && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttempts) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeAttempts) snapshot() []domain.LoginAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.LoginAttempt, len(f.rows))
	copy(out, f.rows)
	return out
}

type fakeIdentities struct {
	mu      sync.Mutex
	byEmail map[string]domain.Identity
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byEmail: make(map[string]domain.Identity)}
}

func (f *fakeIdentities) Create(_ context.Context, identity *domain.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[identity.Email]; ok {
		return domain.ErrDuplicateEntry
	}
	f.byEmail[identity.Email] = *identity
	return nil
}

func (f *fakeIdentities) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &identity, nil
}

func (f *fakeIdentities) GetOneByID(_ context.Context, id uuid.UUID) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, identity := range f.byEmail {
		if identity.ID == id {
			identity := identity
			return &identity, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeIdentities) add(t *testing.T, email string, name string) domain.Identity {
	t.Helper()
	identity := domain.Identity{ID: uuid.New(), Email: email, Name: name, EmailVerified: true}
	require.NoError(t, f.Create(context.Background(), &identity))
	return identity
}

type fakeSessions struct {
	mu   sync.Mutex
	rows []domain.Session
	err  error
}

func (f *fakeSessions) Create(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *session)
	return nil
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerificationCode(ctx context.Context, email string, code string, ttl time.Duration) error {
	return m.Called(ctx, email, code, ttl).Error(0)
}

func (m *mockMailer) SendMagicLink(ctx context.Context, email string, link string, ttl time.Duration) error {
	return m.Called(ctx, email, link, ttl).Error(0)
}

func (m *mockMailer) SendWelcomeEmail(ctx context.Context, email string, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

// sentCodes returns codes mailed to email, oldest first.
func (m *mockMailer) sentCodes(email string) []string {
	var codes []string
	for _, call := range m.Calls {
		if call.Method == "SendVerificationCode" && call.Arguments.String(1) == email {
			codes = append(codes, call.Arguments.String(2))
		}
	}
	return codes
}

func (m *mockMailer) sentLinks(email string) []string {
	var links []string
	for _, call := range m.Calls {
		if call.Method == "SendMagicLink" && call.Arguments.String(1) == email {
			links = append(links, call.Arguments.String(2))
		}
	}
	return links
}

// seqGenerator hands out predictable distinct codes.
type seqGenerator struct {
	mu    sync.Mutex
	codes []string
	next  int
	otp.Generator
}

func (g *seqGenerator) RandomCode(length int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next < len(g.codes) {
		c := g.codes[g.next]
		g.next++
		return c, nil
	}
	return g.Generator.RandomCode(length)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWT: config.JWTConfig{
			SessionTTL:       7 * 24 * time.Hour,
			ProfileTicketTTL: 15 * time.Minute,
			SigningKey:       "test-signing-key",
			Issuer:           "passwordless-test",
		},
		Code: config.CodeConfig{
			Length:         6,
			TTL:            10 * time.Minute,
			ResendCooldown: time.Minute,
			HourlyLimit:    10,
			DailyLimit:     50,
			Backoff:        5 * time.Minute,
		},
		MagicLink: config.MagicLinkConfig{
			TTL:            15 * time.Minute,
			ResendCooldown: time.Minute,
			HourlyLimit:    5,
			Backoff:        5 * time.Minute,
			BaseURL:        "https://app.example.com/auth/magic",
		},
		Lockout:       config.LockoutConfig{Threshold: 5, Window: 15 * time.Minute},
		TokenSalt:     "salt",
		MinNameLength: 2,
	}
}

type testEnv struct {
	clock      *fakeClock
	codes      *fakeCodes
	links      *fakeLinks
	attempts   *fakeAttempts
	identities *fakeIdentities
	sessions   *fakeSessions
	mailer     *mockMailer
	generator  *seqGenerator
	hasher     *hash.SHA256Hasher
	tokens     *auth.Manager

	limiter    *rateLimiter
	codeSvc    *codeService
	linkSvc    *magicLinkService
	sessionSvc *sessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testAuthConfig()

	env := &testEnv{
		clock:      newFakeClock(),
		codes:      &fakeCodes{},
		links:      &fakeLinks{},
		attempts:   &fakeAttempts{},
		identities: newFakeIdentities(),
		sessions:   &fakeSessions{},
		mailer:     &mockMailer{},
		generator:  &seqGenerator{Generator: otp.NewCryptoGenerator()},
		hasher:     hash.NewSHA256Hasher(cfg.TokenSalt),
	}

	tokens, err := auth.NewManager(cfg.JWT)
	require.NoError(t, err)
	env.tokens = tokens

	env.limiter = newRateLimiter(env.codes, env.links, env.attempts, cfg, env.clock.Now)
	sw := newSweeper(env.codes, env.links, env.attempts, 30*24*time.Hour, env.clock.Now)
	verifier := newCredentialVerifier(env.attempts, env.identities, env.limiter, cfg.Lockout, env.clock.Now)

	env.codeSvc = newCodeService(env.codes, env.limiter, verifier, sw, env.generator, env.mailer, cfg.Code, env.clock.Now)
	env.linkSvc = newMagicLinkService(env.links, env.limiter, verifier, env.generator, env.hasher, env.mailer, cfg.MagicLink, env.clock.Now)
	env.sessionSvc = newSessionService(env.identities, env.sessions, env.tokens, env.mailer, cfg.MinNameLength, env.clock.Now)

	return env
}

// requestCode issues a code for email and returns the value that was mailed.
func (e *testEnv) requestCode(t *testing.T, email string) string {
	t.Helper()

	normalized := strings.ToLower(strings.TrimSpace(email))
	e.mailer.On("SendVerificationCode", mock.Anything, normalized, mock.Anything, 10*time.Minute).Return(nil).Maybe()
	require.NoError(t, e.codeSvc.RequestCode(context.Background(), email, domain.CodePurposeLogin))

	codes := e.mailer.sentCodes(normalized)
	require.NotEmpty(t, codes)
	return codes[len(codes)-1]
}

