package impl

import (
	"context"
	"testing"
	"time"

	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authTestDeps struct {
	identity *fakeIdentity
	profiles *memProfileRepo
	lockout  *fakeLockoutGuard
	policy   *allowAllPolicy
	audit    *captureAudit
}

func newTestAuthService(deps *authTestDeps) usecase.AuthUsecase {
	return NewAuthService(AuthServiceParams{
		Identity: deps.identity,
		Profiles: deps.profiles,
		Lockout:  deps.lockout,
		Policy:   deps.policy,
		Audit:    deps.audit,
		Config:   testAuthConfig(),
		Logger:   discardLogger(),
	})
}

func defaultAuthDeps() *authTestDeps {
	return &authTestDeps{
		identity: &fakeIdentity{},
		profiles: newMemProfileRepo(),
		lockout:  &fakeLockoutGuard{},
		policy:   &allowAllPolicy{},
		audit:    &captureAudit{},
	}
}

func grantFor(uid, email string) *entity.Credentials {
	return &entity.Credentials{
		UID:          uid,
		Email:        email,
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    3600,
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	deps := defaultAuthDeps()
	service := newTestAuthService(deps)
	ctx := context.Background()

	_, err := service.SignUp(ctx, &usecase.SignUpInput{Name: "Ann", Email: "", Password: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrEmailPasswordRequired)

	_, err = service.SignUp(ctx, &usecase.SignUpInput{Name: "  ", Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrNameRequired)

	deps.policy.emailErr = domainerrors.ErrEmailInvalid
	_, err = service.SignUp(ctx, &usecase.SignUpInput{Name: "Ann", Email: "bad", Password: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrEmailInvalid)
	deps.policy.emailErr = nil

	deps.policy.weakReasons = []string{"muito curta"}
	_, err = service.SignUp(ctx, &usecase.SignUpInput{Name: "Ann", Email: "a@b.com", Password: "x"})

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "senha_fraca", appErr.ErrorCode())
	assert.Contains(t, appErr.Details(), "muito curta")
}

func TestAuthService_SignUp_Success(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.CreateUserFn = func(_ context.Context, email, password, displayName string) (*entity.IdentityUser, error) {
		return &entity.IdentityUser{UID: "uid-1", Email: email, DisplayName: displayName}, nil
	}
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		return grantFor("uid-1", email), nil
	}
	service := newTestAuthService(deps)

	output, err := service.SignUp(context.Background(), &usecase.SignUpInput{
		Name:     "Ann Smith",
		Email:    "Ann@Example.com",
		Password: "correct-horse-42",
		Meta:     usecase.RequestMeta{IP: "1.2.3.4", UserAgent: "test"},
	})

	require.NoError(t, err)
	assert.Equal(t, "uid-1", output.User.UID)
	assert.Equal(t, "id-token", output.IDToken)
	assert.Equal(t, time.Hour, output.ExpiresIn)

	profile, err := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", profile.Email)
	assert.Equal(t, entity.ProfileStatusActive, profile.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashBackup), []byte("correct-horse-42")))

	events := deps.audit.byType(entity.AuditEventSignup)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
	assert.Equal(t, "1.2.3.4", events[0].IP)
}

func TestAuthService_SignUp_EmailTaken(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.CreateUserFn = func(context.Context, string, string, string) (*entity.IdentityUser, error) {
		return nil, domainerrors.ErrEmailTaken
	}
	service := newTestAuthService(deps)

	_, err := service.SignUp(context.Background(), &usecase.SignUpInput{
		Name: "Ann", Email: "a@b.com", Password: "correct-horse-42",
	})

	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)

	events := deps.audit.byType(entity.AuditEventSignup)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusFailure, events[0].Status)
	assert.Equal(t, "email_ja_cadastrado", events[0].Details["reason"])
}

func TestAuthService_SignIn_Success(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		return grantFor("uid-1", email), nil
	}
	deps.identity.GetUserFn = func(context.Context, string) (*entity.IdentityUser, error) {
		return &entity.IdentityUser{UID: "uid-1", Email: "a@b.com", DisplayName: "Ann"}, nil
	}
	service := newTestAuthService(deps)

	output, err := service.SignIn(context.Background(), &usecase.SignInInput{
		Email:    "a@b.com",
		Password: "secret",
		Meta:     usecase.RequestMeta{IP: "1.2.3.4"},
	})

	require.NoError(t, err)
	assert.Equal(t, "uid-1", output.User.UID)
	assert.Equal(t, []string{"a@b.com:1.2.3.4"}, deps.lockout.cleared)

	// First sign-in of a provider-only user creates the profile.
	profile, err := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", profile.Name)

	events := deps.audit.byType(entity.AuditEventSignin)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
}

func TestAuthService_SignIn_WrongPasswordCountsAttempt(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.SignInFn = func(context.Context, string, string) (*entity.Credentials, error) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	service := newTestAuthService(deps)

	_, err := service.SignIn(context.Background(), &usecase.SignInInput{
		Email:    "a@b.com",
		Password: "wrong",
		Meta:     usecase.RequestMeta{IP: "1.2.3.4"},
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, 1, deps.lockout.attempts)
	assert.Equal(t, "1.2.3.4", deps.lockout.recordedIP)

	events := deps.audit.byType(entity.AuditEventSignin)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusFailure, events[0].Status)
	assert.Equal(t, "1", events[0].Details["attempts"])
}

func TestAuthService_SignIn_FifthFailureLocks(t *testing.T) {
	deps := defaultAuthDeps()
	deps.lockout.lockAfter = 5
	deps.identity.SignInFn = func(context.Context, string, string) (*entity.Credentials, error) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	service := newTestAuthService(deps)
	ctx := context.Background()
	input := &usecase.SignInInput{Email: "a@b.com", Password: "wrong", Meta: usecase.RequestMeta{IP: "ip"}}

	var err error
	for i := 0; i < 5; i++ {
		_, err = service.SignIn(ctx, input)
	}

	assert.ErrorIs(t, err, domainerrors.ErrAccountLocked)
}

func TestAuthService_SignIn_DisabledWithoutPendingProfile(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.SignInFn = func(context.Context, string, string) (*entity.Credentials, error) {
		return nil, domainerrors.ErrAccountDisabled
	}
	service := newTestAuthService(deps)

	_, err := service.SignIn(context.Background(), &usecase.SignInInput{
		Email: "a@b.com", Password: "secret",
	})

	assert.ErrorIs(t, err, domainerrors.ErrAccountDisabled)
}

func TestAuthService_SignIn_ReactivatesPendingDeletionAccount(t *testing.T) {
	deps := defaultAuthDeps()

	now := time.Now()
	deadline := now.Add(20 * 24 * time.Hour)
	deletedAt := now.Add(-10 * 24 * time.Hour)
	_ = deps.profiles.Set(context.Background(), &entity.Profile{
		UID:                  "uid-1",
		Email:                "a@b.com",
		Status:               entity.ProfileStatusPendingDeletion,
		DeletedAt:            &deletedAt,
		DeletionScheduledFor: &deadline,
	})

	disabled := true
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		if disabled {
			return nil, domainerrors.ErrAccountDisabled
		}

		return grantFor("uid-1", email), nil
	}
	deps.identity.SetDisabledFn = func(_ context.Context, uid string, value bool) error {
		disabled = value

		return nil
	}
	deps.identity.GetUserFn = func(context.Context, string) (*entity.IdentityUser, error) {
		return &entity.IdentityUser{UID: "uid-1", Email: "a@b.com"}, nil
	}
	service := newTestAuthService(deps)

	output, err := service.SignIn(context.Background(), &usecase.SignInInput{
		Email: "a@b.com", Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, "id-token", output.IDToken)
	assert.False(t, disabled)

	profile, err := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProfileStatusActive, profile.Status)
	assert.Nil(t, profile.DeletionScheduledFor)

	reactivations := deps.audit.byType(entity.AuditEventAccountReactivated)
	require.Len(t, reactivations, 1)
	assert.Equal(t, "signin", reactivations[0].Details["trigger"])
}

func TestAuthService_SignIn_ExpiredDeadlineStaysDisabled(t *testing.T) {
	deps := defaultAuthDeps()

	deadline := time.Now().Add(-time.Hour)
	_ = deps.profiles.Set(context.Background(), &entity.Profile{
		UID:                  "uid-1",
		Email:                "a@b.com",
		Status:               entity.ProfileStatusPendingDeletion,
		DeletionScheduledFor: &deadline,
	})
	deps.identity.SignInFn = func(context.Context, string, string) (*entity.Credentials, error) {
		return nil, domainerrors.ErrAccountDisabled
	}
	service := newTestAuthService(deps)

	_, err := service.SignIn(context.Background(), &usecase.SignInInput{
		Email: "a@b.com", Password: "secret",
	})

	assert.ErrorIs(t, err, domainerrors.ErrAccountDisabled)
}

func TestAuthService_ForgotPassword_UnknownEmailLooksLikeSuccess(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.SendResetFn = func(context.Context, string) error {
		return domainerrors.ErrUserNotFound
	}
	service := newTestAuthService(deps)

	err := service.ForgotPassword(context.Background(), &usecase.ForgotPasswordInput{Email: "ghost@b.com"})

	assert.NoError(t, err)
}

func TestAuthService_CheckEmail(t *testing.T) {
	deps := defaultAuthDeps()
	registered := false
	deps.identity.GetUserByEmailFn = func(_ context.Context, email string) (*entity.IdentityUser, error) {
		if !registered {
			return nil, domainerrors.ErrUserNotFound
		}

		return &entity.IdentityUser{UID: "uid-1", Email: email}, nil
	}
	service := newTestAuthService(deps)
	ctx := context.Background()

	output, err := service.CheckEmail(ctx, &usecase.CheckEmailInput{Email: "a@b.com"})
	require.NoError(t, err)
	assert.False(t, output.Exists)

	registered = true

	output, err = service.CheckEmail(ctx, &usecase.CheckEmailInput{Email: "a@b.com"})
	require.NoError(t, err)
	assert.True(t, output.Exists)
}

func TestAuthService_ResetPassword(t *testing.T) {
	deps := defaultAuthDeps()
	var updatedPassword string
	var revoked bool
	deps.identity.GetUserByEmailFn = func(_ context.Context, email string) (*entity.IdentityUser, error) {
		return &entity.IdentityUser{UID: "uid-1", Email: email, DisplayName: "Ann"}, nil
	}
	deps.identity.UpdatePasswordFn = func(_ context.Context, _, newPassword string) error {
		updatedPassword = newPassword

		return nil
	}
	deps.identity.RevokeFn = func(context.Context, string) error {
		revoked = true

		return nil
	}
	service := newTestAuthService(deps)

	err := service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Email:       "a@b.com",
		NewPassword: "new-password-42",
	})

	require.NoError(t, err)
	assert.Equal(t, "new-password-42", updatedPassword)
	assert.True(t, revoked)

	fields := deps.profiles.updates["uid-1"]
	require.NotNil(t, fields)
	hash, ok := fields["passwordHashBackup"].(string)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password-42")))

	events := deps.audit.byType(entity.AuditEventPasswordReset)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
}

func TestAuthService_ResetPassword_UnknownEmail(t *testing.T) {
	deps := defaultAuthDeps()
	deps.identity.GetUserByEmailFn = func(context.Context, string) (*entity.IdentityUser, error) {
		return nil, domainerrors.ErrUserNotFound
	}
	service := newTestAuthService(deps)

	err := service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
		Email:       "ghost@b.com",
		NewPassword: "new-password-42",
	})

	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	events := deps.audit.byType(entity.AuditEventPasswordReset)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusFailure, events[0].Status)
	assert.Equal(t, "usuario_nao_encontrado", events[0].Details["reason"])
}

func TestAuthService_ChangePassword_StaleTokenRejected(t *testing.T) {
	deps := defaultAuthDeps()
	service := newTestAuthService(deps)

	claims := &entity.TokenClaims{
		UID:      "uid-1",
		AuthTime: time.Now().Add(-time.Hour),
	}

	err := service.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		Claims:      claims,
		NewPassword: "new-password-42",
	})

	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	events := deps.audit.byType(entity.AuditEventPasswordChange)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusFailure, events[0].Status)
	assert.Equal(t, "token_expirado", events[0].Details["reason"])
	assert.Equal(t, "uid-1", events[0].UID)
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	deps := defaultAuthDeps()
	var updatedPassword string
	deps.identity.GetUserFn = func(context.Context, string) (*entity.IdentityUser, error) {
		return &entity.IdentityUser{UID: "uid-1", Email: "a@b.com", DisplayName: "Ann"}, nil
	}
	deps.identity.UpdatePasswordFn = func(_ context.Context, _, newPassword string) error {
		updatedPassword = newPassword

		return nil
	}
	service := newTestAuthService(deps)

	claims := &entity.TokenClaims{UID: "uid-1", Email: "a@b.com", AuthTime: time.Now()}

	err := service.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		Claims:      claims,
		NewPassword: "new-password-42",
	})

	require.NoError(t, err)
	assert.Equal(t, "new-password-42", updatedPassword)

	events := deps.audit.byType(entity.AuditEventPasswordChange)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
}
