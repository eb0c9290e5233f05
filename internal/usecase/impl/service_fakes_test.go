package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"cinescope/config"
	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/domain/repository"
	"cinescope/internal/domain/service"
)

// fakeIdentity implements service.IdentityProvider with overridable
// function fields. Unset operations fail loudly.
type fakeIdentity struct {
	SignInFn         func(ctx context.Context, email, password string) (*entity.Credentials, error)
	VerifyFn         func(ctx context.Context, idToken string, checkRevoked bool) (*entity.TokenClaims, error)
	GetUserFn        func(ctx context.Context, uid string) (*entity.IdentityUser, error)
	GetUserByEmailFn func(ctx context.Context, email string) (*entity.IdentityUser, error)
	CreateUserFn     func(ctx context.Context, email, password, displayName string) (*entity.IdentityUser, error)
	UpdatePasswordFn func(ctx context.Context, uid, newPassword string) error
	SetDisabledFn    func(ctx context.Context, uid string, disabled bool) error
	RevokeFn         func(ctx context.Context, uid string) error
	SendResetFn      func(ctx context.Context, email string) error
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*entity.Credentials, error) {
	if f.SignInFn == nil {
		return nil, domainerrors.ErrInternal.WrapMessage("SignInWithPassword not stubbed")
	}

	return f.SignInFn(ctx, email, password)
}

func (f *fakeIdentity) VerifyToken(ctx context.Context, idToken string, checkRevoked bool) (*entity.TokenClaims, error) {
	if f.VerifyFn == nil {
		return nil, domainerrors.ErrInternal.WrapMessage("VerifyToken not stubbed")
	}

	return f.VerifyFn(ctx, idToken, checkRevoked)
}

func (f *fakeIdentity) GetUser(ctx context.Context, uid string) (*entity.IdentityUser, error) {
	if f.GetUserFn == nil {
		return nil, domainerrors.ErrInternal.WrapMessage("GetUser not stubbed")
	}

	return f.GetUserFn(ctx, uid)
}

func (f *fakeIdentity) GetUserByEmail(ctx context.Context, email string) (*entity.IdentityUser, error) {
	if f.GetUserByEmailFn == nil {
		return nil, domainerrors.ErrInternal.WrapMessage("GetUserByEmail not stubbed")
	}

	return f.GetUserByEmailFn(ctx, email)
}

func (f *fakeIdentity) CreateUser(ctx context.Context, email, password, displayName string) (*entity.IdentityUser, error) {
	if f.CreateUserFn == nil {
		return nil, domainerrors.ErrInternal.WrapMessage("CreateUser not stubbed")
	}

	return f.CreateUserFn(ctx, email, password, displayName)
}

func (f *fakeIdentity) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	if f.UpdatePasswordFn == nil {
		return domainerrors.ErrInternal.WrapMessage("UpdatePassword not stubbed")
	}

	return f.UpdatePasswordFn(ctx, uid, newPassword)
}

func (f *fakeIdentity) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	if f.SetDisabledFn == nil {
		return domainerrors.ErrInternal.WrapMessage("SetDisabled not stubbed")
	}

	return f.SetDisabledFn(ctx, uid, disabled)
}

func (f *fakeIdentity) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if f.RevokeFn == nil {
		return nil
	}

	return f.RevokeFn(ctx, uid)
}

func (f *fakeIdentity) SendPasswordReset(ctx context.Context, email string) error {
	if f.SendResetFn == nil {
		return domainerrors.ErrInternal.WrapMessage("SendPasswordReset not stubbed")
	}

	return f.SendResetFn(ctx, email)
}

// memProfileRepo is an in-memory profile store keyed by uid.
type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	updates  map[string]map[string]any
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{
		profiles: make(map[string]*entity.Profile),
		updates:  make(map[string]map[string]any),
	}
}

func (m *memProfileRepo) Get(_ context.Context, uid string) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[uid]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	copied := *profile

	return &copied, nil
}

func (m *memProfileRepo) GetByEmail(_ context.Context, email string) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, profile := range m.profiles {
		if profile.Email == email {
			copied := *profile

			return &copied, nil
		}
	}

	return nil, repository.ErrProfileNotFound
}

func (m *memProfileRepo) Set(_ context.Context, profile *entity.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *profile
	m.profiles[profile.UID] = &copied

	return nil
}

func (m *memProfileRepo) Update(_ context.Context, uid string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates[uid] = fields

	return nil
}

// fakeLockoutGuard records interactions without any persistence.
type fakeLockoutGuard struct {
	attempts   int
	lockAfter  int
	cleared    []string
	recordedIP string
}

func (f *fakeLockoutGuard) CheckLock(context.Context, string, string) service.LockStatus {
	return service.LockStatus{Decision: service.DecisionAllow}
}

func (f *fakeLockoutGuard) RecordFailedAttempt(_ context.Context, _ string, ip string) service.LockStatus {
	f.attempts++
	f.recordedIP = ip

	status := service.LockStatus{Decision: service.DecisionAllow, Attempts: f.attempts}
	if f.lockAfter > 0 && f.attempts >= f.lockAfter {
		until := time.Now().Add(15 * time.Minute)
		status.Decision = service.DecisionReject
		status.LockUntil = &until
	}

	return status
}

func (f *fakeLockoutGuard) ClearFailedAttempts(_ context.Context, email, ip string) error {
	f.cleared = append(f.cleared, email+":"+ip)

	return nil
}

// allowAllPolicy accepts any password and any email.
type allowAllPolicy struct {
	weakReasons []string
	emailErr    error
}

func (p *allowAllPolicy) Validate(string, string, string) []string {
	return p.weakReasons
}

func (p *allowAllPolicy) ValidateEmail(string) error {
	return p.emailErr
}

// captureAudit collects events synchronously for assertions.
type captureAudit struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (c *captureAudit) Record(_ context.Context, event entity.AuditEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)
}

func (c *captureAudit) byType(eventType string) []entity.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []entity.AuditEvent
	for _, event := range c.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuthConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		MaxFailedAttempts: 5,
		AttemptWindow:     15 * time.Minute,
		LockDuration:      15 * time.Minute,
		TokenFreshness:    10 * time.Minute,
	}
	cfg.Lifecycle = &config.LifecycleConfig{GraceDays: 30}

	return cfg
}
