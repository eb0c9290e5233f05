// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strconv"
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
	"golang.org/x/crypto/bcrypt"
)

// authService implements the AuthUsecase interface.
type authService struct {
	identity           service.IdentityProvider
	profiles           repository.ProfileRepository
	lockout            service.LockoutGuard
	policy             service.PasswordPolicy
	audit              service.AuditLogger
	tokenFreshness     time.Duration
	reactivateOnSignin bool
	logger             *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	Identity service.IdentityProvider
	Profiles repository.ProfileRepository
	Lockout  service.LockoutGuard
	Policy   service.PasswordPolicy
	Audit    service.AuditLogger
	Config   *config.Config
	Logger   *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		identity:           params.Identity,
		profiles:           params.Profiles,
		lockout:            params.Lockout,
		policy:             params.Policy,
		audit:              params.Audit,
		tokenFreshness:     params.Config.Auth.TokenFreshness,
		reactivateOnSignin: params.Config.Auth.ShouldReactivateOnSignin(),
		logger:             params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUp creates the provider account, seeds the profile document and
// returns a fresh session.
func (srv *authService) SignUp(ctx context.Context, input *usecase.SignUpInput) (*usecase.SessionOutput, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrEmailPasswordRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, domainerrors.ErrNameRequired
	}
	if err := srv.policy.ValidateEmail(email); err != nil {
		return nil, err
	}
	if reasons := srv.policy.Validate(input.Password, email, input.Name); len(reasons) > 0 {
		return nil, domainerrors.ErrWeakPassword.WithDetails(strings.Join(reasons, "; "))
	}

	user, err := srv.identity.CreateUser(ctx, email, input.Password, strings.TrimSpace(input.Name))
	if err != nil {
		srv.recordAuth(ctx, entity.AuditEventSignup, "", email, input.Meta, err, nil)

		return nil, err
	}

	now := time.Now()
	profile := &entity.Profile{
		UID:                user.UID,
		Name:               user.DisplayName,
		Email:              email,
		PasswordHashBackup: backupHash(srv.log(ctx), input.Password),
		Status:             entity.ProfileStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := srv.profiles.Set(ctx, profile); err != nil {
		srv.recordAuth(ctx, entity.AuditEventSignup, user.UID, email, input.Meta, err, nil)

		return nil, errors.Wrap(err, "failed to create profile")
	}

	creds, err := srv.identity.SignInWithPassword(ctx, email, input.Password)
	if err != nil {
		srv.recordAuth(ctx, entity.AuditEventSignup, user.UID, email, input.Meta, err, nil)

		return nil, err
	}

	srv.recordAuth(ctx, entity.AuditEventSignup, user.UID, email, input.Meta, nil, nil)
	srv.log(ctx).Info("Account created", slog.String("uid", user.UID))

	return sessionOutput(user, creds), nil
}

// SignIn performs the password grant, maintains the failed-attempt counter
// and reconciles the profile document.
func (srv *authService) SignIn(ctx context.Context, input *usecase.SignInInput) (*usecase.SessionOutput, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrEmailPasswordRequired
	}

	creds, err := srv.identity.SignInWithPassword(ctx, email, input.Password)
	if errors.Is(err, domainerrors.ErrInvalidCredentials) {
		return nil, srv.handleFailedSignin(ctx, email, input.Meta)
	}
	if errors.Is(err, domainerrors.ErrAccountDisabled) {
		creds, err = srv.trySigninReactivation(ctx, email, input)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		srv.recordAuth(ctx, entity.AuditEventSignin, "", email, input.Meta, err, nil)

		return nil, err
	}

	if err := srv.lockout.ClearFailedAttempts(ctx, email, input.Meta.IP); err != nil {
		srv.log(ctx).Warn("Failed to clear lockout counter", slog.String("email", email), slog.Any("error", err))
	}

	user, err := srv.identity.GetUser(ctx, creds.UID)
	if err != nil {
		srv.log(ctx).Warn("Failed to load user record after grant", slog.String("uid", creds.UID), slog.Any("error", err))
		user = &entity.IdentityUser{UID: creds.UID, Email: creds.Email}
	}

	srv.ensureProfile(ctx, user)
	srv.recordAuth(ctx, entity.AuditEventSignin, creds.UID, email, input.Meta, nil, nil)

	return sessionOutput(user, creds), nil
}

// handleFailedSignin records the failed attempt and reports whether it
// tripped the lock.
func (srv *authService) handleFailedSignin(ctx context.Context, email string, meta usecase.RequestMeta) error {
	status := srv.lockout.RecordFailedAttempt(ctx, email, meta.IP)

	details := map[string]string{"attempts": strconv.Itoa(status.Attempts)}
	srv.recordAuth(ctx, entity.AuditEventSignin, "", email, meta, domainerrors.ErrInvalidCredentials, details)

	if status.Locked() {
		return domainerrors.ErrAccountLocked
	}

	return domainerrors.ErrInvalidCredentials
}

// trySigninReactivation re-enables a pending-deletion account whose owner
// signed in with valid credentials inside the grace window, then retries
// the grant once.
func (srv *authService) trySigninReactivation(ctx context.Context, email string, input *usecase.SignInInput) (*entity.Credentials, error) {
	profile, err := srv.profiles.GetByEmail(ctx, email)
	if err != nil || !profile.PendingDeletion() || profile.DeadlinePassed(time.Now()) || !srv.reactivateOnSignin {
		srv.recordAuth(ctx, entity.AuditEventSignin, "", email, input.Meta, domainerrors.ErrAccountDisabled, nil)

		return nil, domainerrors.ErrAccountDisabled
	}

	if err := srv.identity.SetDisabled(ctx, profile.UID, false); err != nil {
		srv.recordAuth(ctx, entity.AuditEventSignin, profile.UID, email, input.Meta, err, nil)

		return nil, errors.Wrap(err, "failed to re-enable account")
	}

	creds, err := srv.identity.SignInWithPassword(ctx, email, input.Password)
	if err != nil {
		srv.recordAuth(ctx, entity.AuditEventSignin, profile.UID, email, input.Meta, err, nil)

		return nil, err
	}

	profile.Restore(time.Now())
	if err := srv.profiles.Set(ctx, profile); err != nil {
		srv.log(ctx).Error("Failed to restore profile after re-enable", slog.String("uid", profile.UID), slog.Any("error", err))
	}

	srv.recordAuth(ctx, entity.AuditEventAccountReactivated, profile.UID, email, input.Meta, nil,
		map[string]string{"trigger": "signin"})
	srv.log(ctx).Info("Account reactivated on sign-in", slog.String("uid", profile.UID))

	return creds, nil
}

// ensureProfile creates the profile document on the first sign-in of a
// provider-only user. Failures are logged and never fail the sign-in.
func (srv *authService) ensureProfile(ctx context.Context, user *entity.IdentityUser) {
	_, err := srv.profiles.Get(ctx, user.UID)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrProfileNotFound) {
		srv.log(ctx).Warn("Failed to load profile", slog.String("uid", user.UID), slog.Any("error", err))

		return
	}

	now := time.Now()
	profile := &entity.Profile{
		UID:       user.UID,
		Name:      user.DisplayName,
		Email:     strings.ToLower(user.Email),
		AvatarURL: user.PhotoURL,
		Status:    entity.ProfileStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := srv.profiles.Set(ctx, profile); err != nil {
		srv.log(ctx).Error("Failed to create profile on first sign-in", slog.String("uid", user.UID), slog.Any("error", err))
	}
}

// Verify validates a bearer token, including a revocation check.
func (srv *authService) Verify(ctx context.Context, idToken string) (*entity.TokenClaims, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, domainerrors.ErrTokenInvalid
	}

	return srv.identity.VerifyToken(ctx, idToken, true)
}

// ForgotPassword asks the provider to mail a reset link. Whether the email
// is registered is never revealed to the caller.
func (srv *authService) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return domainerrors.ErrEmailRequired
	}
	if err := srv.policy.ValidateEmail(email); err != nil {
		return err
	}

	err := srv.identity.SendPasswordReset(ctx, email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		// Indistinguishable from success on purpose.
		srv.log(ctx).Debug("Password reset requested for unknown email")

		err = nil
	}

	srv.recordAuth(ctx, entity.AuditEventPasswordReset, "", email, input.Meta, err,
		map[string]string{"stage": "requested"})

	return err
}

// CheckEmail reports whether an address is registered. The route exists for
// the sign-up form and is rate-limited for that reason.
func (srv *authService) CheckEmail(ctx context.Context, input *usecase.CheckEmailInput) (*usecase.CheckEmailOutput, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if err := srv.policy.ValidateEmail(email); err != nil {
		return nil, err
	}

	_, err := srv.identity.GetUserByEmail(ctx, email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return &usecase.CheckEmailOutput{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &usecase.CheckEmailOutput{Exists: true}, nil
}

// ResetPassword sets a new password for the account with the given email
// and revokes every open session.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return domainerrors.ErrEmailRequired
	}
	if input.NewPassword == "" {
		return domainerrors.ErrPasswordRequired
	}

	user, err := srv.identity.GetUserByEmail(ctx, email)
	if err != nil {
		srv.recordAuth(ctx, entity.AuditEventPasswordReset, "", email, input.Meta, err, nil)

		return err
	}

	if err := srv.applyNewPassword(ctx, user, input.NewPassword); err != nil {
		srv.recordAuth(ctx, entity.AuditEventPasswordReset, user.UID, email, input.Meta, err, nil)

		return err
	}

	srv.recordAuth(ctx, entity.AuditEventPasswordReset, user.UID, email, input.Meta, nil, nil)
	srv.log(ctx).Info("Password reset", slog.String("uid", user.UID))

	return nil
}

// ChangePassword sets a new password for the authenticated account. The
// token must carry a recent auth_time.
func (srv *authService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	if !input.Claims.FreshWithin(time.Now(), srv.tokenFreshness) {
		srv.recordAuth(ctx, entity.AuditEventPasswordChange, input.Claims.UID, input.Claims.Email, input.Meta, domainerrors.ErrTokenExpired, nil)

		return domainerrors.ErrTokenExpired
	}
	if input.NewPassword == "" {
		return domainerrors.ErrPasswordRequired
	}

	user, err := srv.identity.GetUser(ctx, input.Claims.UID)
	if err != nil {
		srv.recordAuth(ctx, entity.AuditEventPasswordChange, input.Claims.UID, input.Claims.Email, input.Meta, err, nil)

		return err
	}

	if err := srv.applyNewPassword(ctx, user, input.NewPassword); err != nil {
		srv.recordAuth(ctx, entity.AuditEventPasswordChange, user.UID, user.Email, input.Meta, err, nil)

		return err
	}

	srv.recordAuth(ctx, entity.AuditEventPasswordChange, user.UID, user.Email, input.Meta, nil, nil)
	srv.log(ctx).Info("Password changed", slog.String("uid", user.UID))

	return nil
}

// applyNewPassword validates strength, writes the new credential and
// revokes open sessions. The bcrypt backup is best effort.
func (srv *authService) applyNewPassword(ctx context.Context, user *entity.IdentityUser, newPassword string) error {
	if reasons := srv.policy.Validate(newPassword, user.Email, user.DisplayName); len(reasons) > 0 {
		return domainerrors.ErrWeakPassword.WithDetails(strings.Join(reasons, "; "))
	}

	if err := srv.identity.UpdatePassword(ctx, user.UID, newPassword); err != nil {
		return err
	}

	if err := srv.identity.RevokeRefreshTokens(ctx, user.UID); err != nil {
		srv.log(ctx).Error("Failed to revoke sessions after password change", slog.String("uid", user.UID), slog.Any("error", err))
	}

	fields := map[string]any{
		"passwordHashBackup": backupHash(srv.log(ctx), newPassword),
		"updatedAt":          time.Now(),
	}
	if err := srv.profiles.Update(ctx, user.UID, fields); err != nil {
		srv.log(ctx).Warn("Failed to store password hash backup", slog.String("uid", user.UID), slog.Any("error", err))
	}

	return nil
}

// recordAuth emits the single audit event for a terminal outcome.
func (srv *authService) recordAuth(ctx context.Context, eventType, uid, email string, meta usecase.RequestMeta, err error, details map[string]string) {
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

// outcomeStatus classifies an error: a typed domain rejection is a failure,
// anything else is an internal error.
func outcomeStatus(err error) entity.AuditStatus {
	if err == nil {
		return entity.AuditStatusSuccess
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < 500 {
		return entity.AuditStatusFailure
	}

	return entity.AuditStatusError
}

func outcomeDetails(err error, details map[string]string) map[string]string {
	if err == nil {
		return details
	}

	if details == nil {
		details = make(map[string]string, 1)
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		details["reason"] = appErr.ErrorCode()
	} else {
		details["reason"] = "erro_interno"
	}

	return details
}

// backupHash computes the bcrypt copy kept in the profile document. The
// provider credential remains authoritative, so a hashing failure only
// loses the backup.
func backupHash(logger *slog.Logger, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password backup", slog.Any("error", err))

		return ""
	}

	return string(hash)
}

func sessionOutput(user *entity.IdentityUser, creds *entity.Credentials) *usecase.SessionOutput {
	return &usecase.SessionOutput{
		User:         user,
		IDToken:      creds.IDToken,
		RefreshToken: creds.RefreshToken,
		ExpiresIn:    time.Duration(creds.ExpiresIn) * time.Second,
	}
}
