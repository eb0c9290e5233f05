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
)

type accountTestDeps struct {
	identity *fakeIdentity
	profiles *memProfileRepo
	audit    *captureAudit
}

func newTestAccountService(deps *accountTestDeps) usecase.AccountUsecase {
	return NewAccountService(AccountServiceParams{
		Identity: deps.identity,
		Profiles: deps.profiles,
		Audit:    deps.audit,
		Config:   testAuthConfig(),
		Logger:   discardLogger(),
	})
}

func defaultAccountDeps() *accountTestDeps {
	return &accountTestDeps{
		identity: &fakeIdentity{},
		profiles: newMemProfileRepo(),
		audit:    &captureAudit{},
	}
}

func activeProfile(uid, email string) *entity.Profile {
	now := time.Now()

	return &entity.Profile{
		UID:       uid,
		Email:     email,
		Name:      "Ann",
		Status:    entity.ProfileStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func claimsFor(uid, email string) *entity.TokenClaims {
	return &entity.TokenClaims{UID: uid, Email: email, AuthTime: time.Now()}
}

func TestAccountService_Delete_Success(t *testing.T) {
	deps := defaultAccountDeps()
	_ = deps.profiles.Set(context.Background(), activeProfile("uid-1", "a@b.com"))
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		return &entity.Credentials{UID: "uid-1", Email: email}, nil
	}
	service := newTestAccountService(deps)

	before := time.Now()
	output, err := service.Delete(context.Background(), &usecase.DeleteAccountInput{
		Claims:   claimsFor("uid-1", "a@b.com"),
		Password: "secret",
	})

	require.NoError(t, err)
	expected := before.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, output.DeletionDate, time.Minute)

	profile, err := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProfileStatusPendingDeletion, profile.Status)
	require.NotNil(t, profile.DeletedAt)
	require.NotNil(t, profile.DeletionScheduledFor)

	events := deps.audit.byType(entity.AuditEventAccountDeleted)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
}

func TestAccountService_Delete_WrongPassword(t *testing.T) {
	deps := defaultAccountDeps()
	deps.identity.SignInFn = func(context.Context, string, string) (*entity.Credentials, error) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	service := newTestAccountService(deps)

	_, err := service.Delete(context.Background(), &usecase.DeleteAccountInput{
		Claims:   claimsFor("uid-1", "a@b.com"),
		Password: "wrong",
	})

	assert.ErrorIs(t, err, domainerrors.ErrWrongPassword)

	events := deps.audit.byType(entity.AuditEventAccountDeleted)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusFailure, events[0].Status)
}

func TestAccountService_Delete_MissingPassword(t *testing.T) {
	deps := defaultAccountDeps()
	service := newTestAccountService(deps)

	_, err := service.Delete(context.Background(), &usecase.DeleteAccountInput{
		Claims: claimsFor("uid-1", "a@b.com"),
	})

	assert.ErrorIs(t, err, domainerrors.ErrPasswordRequired)
}

func TestAccountService_Delete_RepeatRejected(t *testing.T) {
	deps := defaultAccountDeps()
	_ = deps.profiles.Set(context.Background(), activeProfile("uid-1", "a@b.com"))
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		return &entity.Credentials{UID: "uid-1", Email: email}, nil
	}
	service := newTestAccountService(deps)
	ctx := context.Background()
	input := &usecase.DeleteAccountInput{Claims: claimsFor("uid-1", "a@b.com"), Password: "secret"}

	_, err := service.Delete(ctx, input)
	require.NoError(t, err)

	_, err = service.Delete(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyPendingDeletion)

	// One event per terminal outcome: the first delete succeeded, the
	// repeat was rejected.
	events := deps.audit.byType(entity.AuditEventAccountDeleted)
	require.Len(t, events, 2)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
	assert.Equal(t, entity.AuditStatusFailure, events[1].Status)
	assert.Equal(t, "conta_ja_marcada_exclusao", events[1].Details["reason"])
}

func TestAccountService_Delete_SynthesizesProfileForProviderOnlyUser(t *testing.T) {
	deps := defaultAccountDeps()
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		return &entity.Credentials{UID: "uid-1", Email: email}, nil
	}
	deps.identity.GetUserFn = func(context.Context, string) (*entity.IdentityUser, error) {
		return &entity.IdentityUser{UID: "uid-1", Email: "a@b.com", DisplayName: "Ann"}, nil
	}
	service := newTestAccountService(deps)

	output, err := service.Delete(context.Background(), &usecase.DeleteAccountInput{
		Claims:   claimsFor("uid-1", "a@b.com"),
		Password: "secret",
	})

	require.NoError(t, err)
	assert.False(t, output.DeletionDate.IsZero())

	profile, err := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProfileStatusPendingDeletion, profile.Status)
}

func TestAccountService_DeleteThenReactivate(t *testing.T) {
	deps := defaultAccountDeps()
	_ = deps.profiles.Set(context.Background(), activeProfile("uid-1", "a@b.com"))
	deps.identity.SignInFn = func(_ context.Context, email, _ string) (*entity.Credentials, error) {
		return &entity.Credentials{UID: "uid-1", Email: email}, nil
	}
	deps.identity.SetDisabledFn = func(context.Context, string, bool) error {
		return nil
	}
	service := newTestAccountService(deps)
	ctx := context.Background()

	_, err := service.Delete(ctx, &usecase.DeleteAccountInput{
		Claims:   claimsFor("uid-1", "a@b.com"),
		Password: "secret",
	})
	require.NoError(t, err)

	err = service.Reactivate(ctx, &usecase.ReactivateAccountInput{Claims: claimsFor("uid-1", "a@b.com")})
	require.NoError(t, err)

	profile, err := deps.profiles.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProfileStatusActive, profile.Status)
	assert.Nil(t, profile.DeletedAt)
	assert.Nil(t, profile.DeletionScheduledFor)

	events := deps.audit.byType(entity.AuditEventAccountReactivated)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusSuccess, events[0].Status)
}

func TestAccountService_Reactivate_NotPending(t *testing.T) {
	deps := defaultAccountDeps()
	_ = deps.profiles.Set(context.Background(), activeProfile("uid-1", "a@b.com"))
	service := newTestAccountService(deps)

	err := service.Reactivate(context.Background(), &usecase.ReactivateAccountInput{
		Claims: claimsFor("uid-1", "a@b.com"),
	})

	assert.ErrorIs(t, err, domainerrors.ErrNotPendingDeletion)

	events := deps.audit.byType(entity.AuditEventAccountReactivated)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditStatusFailure, events[0].Status)
	assert.Equal(t, "conta_nao_marcada_exclusao", events[0].Details["reason"])
}

func TestAccountService_Reactivate_PastDeadline(t *testing.T) {
	deps := defaultAccountDeps()
	profile := activeProfile("uid-1", "a@b.com")
	deadline := time.Now().Add(-time.Hour)
	deletedAt := deadline.Add(-30 * 24 * time.Hour)
	profile.Status = entity.ProfileStatusPendingDeletion
	profile.DeletedAt = &deletedAt
	profile.DeletionScheduledFor = &deadline
	_ = deps.profiles.Set(context.Background(), profile)
	service := newTestAccountService(deps)

	err := service.Reactivate(context.Background(), &usecase.ReactivateAccountInput{
		Claims: claimsFor("uid-1", "a@b.com"),
	})

	assert.ErrorIs(t, err, domainerrors.ErrDeadlineExpired)

	stored, getErr := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, getErr)
	assert.Equal(t, entity.ProfileStatusPendingDeletion, stored.Status)
}

func TestAccountService_ReEnableByEmail(t *testing.T) {
	deps := defaultAccountDeps()
	profile := activeProfile("uid-1", "a@b.com")
	deadline := time.Now().Add(24 * time.Hour)
	now := time.Now()
	profile.Status = entity.ProfileStatusPendingDeletion
	profile.DeletedAt = &now
	profile.DeletionScheduledFor = &deadline
	_ = deps.profiles.Set(context.Background(), profile)
	deps.identity.SetDisabledFn = func(context.Context, string, bool) error {
		return nil
	}
	service := newTestAccountService(deps)

	err := service.ReEnableByEmail(context.Background(), &usecase.ReEnableAccountInput{Email: "A@B.com"})

	require.NoError(t, err)
	stored, getErr := deps.profiles.Get(context.Background(), "uid-1")
	require.NoError(t, getErr)
	assert.Equal(t, entity.ProfileStatusActive, stored.Status)
}

func TestAccountService_ReEnableByEmail_Unknown(t *testing.T) {
	deps := defaultAccountDeps()
	service := newTestAccountService(deps)

	err := service.ReEnableByEmail(context.Background(), &usecase.ReEnableAccountInput{Email: "ghost@b.com"})

	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
