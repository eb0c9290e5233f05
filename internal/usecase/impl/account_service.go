package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cinescope/config"
	deliverycontext "cinescope/internal/delivery/context"
	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/domain/repository"
	"cinescope/internal/domain/service"
	"cinescope/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface. It drives the
// soft-delete state machine across the identity provider and the profile
// store.
type accountService struct {
	identity service.IdentityProvider
	profiles repository.ProfileRepository
	audit    service.AuditLogger
	grace    time.Duration
	logger   *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	Identity service.IdentityProvider
	Profiles repository.ProfileRepository
	Audit    service.AuditLogger
	Config   *config.Config
	Logger   *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		identity: params.Identity,
		profiles: params.Profiles,
		audit:    params.Audit,
		grace:    params.Config.Lifecycle.GracePeriod(),
		logger:   params.Logger,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Delete re-verifies the password and marks the profile pending deletion.
// The provider account stays enabled so the owner can still sign in and
// reactivate during the grace window.
func (srv *accountService) Delete(ctx context.Context, input *usecase.DeleteAccountInput) (*usecase.DeleteAccountOutput, error) {
	if input.Password == "" {
		return nil, domainerrors.ErrPasswordRequired
	}

	uid := input.Claims.UID
	email := strings.ToLower(input.Claims.Email)

	if _, err := srv.identity.SignInWithPassword(ctx, email, input.Password); err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			srv.record(ctx, entity.AuditEventAccountDeleted, uid, email, input.Meta, domainerrors.ErrWrongPassword, nil)

			return nil, domainerrors.ErrWrongPassword
		}
		srv.record(ctx, entity.AuditEventAccountDeleted, uid, email, input.Meta, err, nil)

		return nil, err
	}

	profile, err := srv.loadOrSynthesizeProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile.PendingDeletion() {
		srv.record(ctx, entity.AuditEventAccountDeleted, uid, email, input.Meta, domainerrors.ErrAlreadyPendingDeletion, nil)

		return nil, domainerrors.ErrAlreadyPendingDeletion
	}

	now := time.Now()
	profile.MarkPendingDeletion(now, srv.grace)
	if err := srv.profiles.Set(ctx, profile); err != nil {
		srv.record(ctx, entity.AuditEventAccountDeleted, uid, email, input.Meta, err, nil)

		return nil, errors.Wrap(err, "failed to mark profile pending deletion")
	}

	srv.record(ctx, entity.AuditEventAccountDeleted, uid, email, input.Meta, nil,
		map[string]string{"deletionScheduledFor": profile.DeletionScheduledFor.Format(time.RFC3339)})
	srv.log(ctx).Info("Account marked for deletion", slog.String("uid", uid),
		slog.Time("deletionScheduledFor", *profile.DeletionScheduledFor))

	return &usecase.DeleteAccountOutput{DeletionDate: *profile.DeletionScheduledFor}, nil
}

// Reactivate restores the authenticated pending-deletion account before
// its deadline.
func (srv *accountService) Reactivate(ctx context.Context, input *usecase.ReactivateAccountInput) error {
	return srv.reactivate(ctx, input.Claims.UID, strings.ToLower(input.Claims.Email), input.Meta)
}

// ReEnableByEmail restores a pending-deletion account identified by email.
// A disabled account cannot sign in, so this path needs no session.
func (srv *accountService) ReEnableByEmail(ctx context.Context, input *usecase.ReEnableAccountInput) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return domainerrors.ErrEmailRequired
	}

	profile, err := srv.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return domainerrors.ErrUserNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to load profile")
	}

	return srv.reactivate(ctx, profile.UID, email, input.Meta)
}

func (srv *accountService) reactivate(ctx context.Context, uid, email string, meta usecase.RequestMeta) error {
	profile, err := srv.profiles.Get(ctx, uid)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return domainerrors.ErrUserNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to load profile")
	}

	if !profile.PendingDeletion() {
		srv.record(ctx, entity.AuditEventAccountReactivated, uid, email, meta, domainerrors.ErrNotPendingDeletion, nil)

		return domainerrors.ErrNotPendingDeletion
	}
	if profile.DeadlinePassed(time.Now()) {
		srv.record(ctx, entity.AuditEventAccountReactivated, uid, email, meta, domainerrors.ErrDeadlineExpired, nil)

		return domainerrors.ErrDeadlineExpired
	}

	profile.Restore(time.Now())
	if err := srv.profiles.Set(ctx, profile); err != nil {
		srv.record(ctx, entity.AuditEventAccountReactivated, uid, email, meta, err, nil)

		return errors.Wrap(err, "failed to restore profile")
	}

	// Re-enable the provider account in case it was disabled out of band.
	if err := srv.identity.SetDisabled(ctx, uid, false); err != nil {
		srv.record(ctx, entity.AuditEventAccountReactivated, uid, email, meta, err, nil)

		return errors.Wrap(err, "failed to re-enable account")
	}

	srv.record(ctx, entity.AuditEventAccountReactivated, uid, email, meta, nil, nil)
	srv.log(ctx).Info("Account reactivated", slog.String("uid", uid))

	return nil
}

// loadOrSynthesizeProfile returns the profile document, creating it from
// the provider record when a provider-only user deletes their account.
func (srv *accountService) loadOrSynthesizeProfile(ctx context.Context, uid string) (*entity.Profile, error) {
	profile, err := srv.profiles.Get(ctx, uid)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, errors.Wrap(err, "failed to load profile")
	}

	user, err := srv.identity.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	profile = &entity.Profile{
		UID:       user.UID,
		Name:      user.DisplayName,
		Email:     strings.ToLower(user.Email),
		AvatarURL: user.PhotoURL,
		Status:    entity.ProfileStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := srv.profiles.Set(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "failed to create profile")
	}

	return profile, nil
}

func (srv *accountService) record(ctx context.Context, eventType, uid, email string, meta usecase.RequestMeta, err error, details map[string]string) {
	srv.audit.Record(ctx, entity.AuditEvent{
		Type:      eventType,
		UID:       uid,
		Email:     email,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Status:    outcomeStatus(err),
		Details:   outcomeDetails(err, details),
	})
}
