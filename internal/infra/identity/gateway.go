// Package identity implements the IdentityProvider service over Firebase
// Authentication: the Admin SDK for token verification and user
// administration, and the Identity Toolkit REST surface for the operations
// the SDK does not expose (password grant, password-reset mail).
package identity

import (
	"context"
	"log/slog"
	"time"

	"cinescope/config"
	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"
	"cinescope/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// adminClient is the slice of *auth.Client the gateway uses, extracted so
// tests can substitute the Admin SDK.
type adminClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Gateway adapts Firebase Authentication to the domain IdentityProvider
// interface and normalizes provider errors into the stable taxonomy.
type Gateway struct {
	admin       adminClient
	rest        *restClient
	callTimeout time.Duration
	logger      *slog.Logger
}

var _ service.IdentityProvider = (*Gateway)(nil)

// NewGateway builds the Firebase app and auth client once at process start.
// The client handle is reused for the process lifetime.
func NewGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.IdentityProvider, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get auth client")
	}

	return &Gateway{
		admin:       client,
		rest:        newRESTClient(cfg.Firebase, logger),
		callTimeout: cfg.Firebase.CallTimeout,
		logger:      logger,
	}, nil
}

// SignInWithPassword performs the password-grant exchange through the
// Identity Toolkit REST endpoint.
func (g *Gateway) SignInWithPassword(ctx context.Context, email, password string) (*entity.Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	return g.rest.signInWithPassword(ctx, email, password)
}

// VerifyToken validates a bearer token, optionally checking revocation.
func (g *Gateway) VerifyToken(ctx context.Context, idToken string, checkRevoked bool) (*entity.TokenClaims, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var token *auth.Token
	var err error
	if checkRevoked {
		token, err = g.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	} else {
		token, err = g.admin.VerifyIDToken(ctx, idToken)
	}
	if err != nil {
		g.logger.Warn("Token verification failed", slog.Any("error", err))

		if auth.IsIDTokenExpired(err) {
			return nil, domainerrors.ErrTokenInvalid.WrapMessage("token expired")
		}
		if auth.IsIDTokenRevoked(err) {
			return nil, domainerrors.ErrTokenInvalid.WrapMessage("token revoked")
		}

		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token verification failed")
	}

	email, _ := token.Claims["email"].(string)

	return &entity.TokenClaims{
		UID:      token.UID,
		Email:    email,
		AuthTime: time.Unix(token.AuthTime, 0),
		Expires:  time.Unix(token.Expires, 0),
		Claims:   token.Claims,
	}, nil
}

// GetUser fetches the provider-side user record.
func (g *Gateway) GetUser(ctx context.Context, uid string) (*entity.IdentityUser, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	record, err := g.admin.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("get user")
		}

		return nil, errors.Wrap(err, "failed to get user")
	}

	return toIdentityUser(record), nil
}

// GetUserByEmail fetches the provider-side user record by email.
func (g *Gateway) GetUserByEmail(ctx context.Context, email string) (*entity.IdentityUser, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	record, err := g.admin.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("get user by email")
		}

		return nil, errors.Wrap(err, "failed to get user by email")
	}

	return toIdentityUser(record), nil
}

// CreateUser registers a new provider-side account.
func (g *Gateway) CreateUser(ctx context.Context, email, password, displayName string) (*entity.IdentityUser, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := g.admin.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, domainerrors.ErrEmailTaken.WrapMessage("create user")
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	return toIdentityUser(record), nil
}

// UpdatePassword replaces the provider-side credential.
func (g *Gateway) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	if _, err := g.admin.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Password(newPassword)); err != nil {
		if auth.IsUserNotFound(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("update password")
		}

		return errors.Wrap(err, "failed to update password")
	}

	return nil
}

// SetDisabled enables or disables the provider-side account.
func (g *Gateway) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	if _, err := g.admin.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Disabled(disabled)); err != nil {
		if auth.IsUserNotFound(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("set disabled")
		}

		return errors.Wrap(err, "failed to update disabled flag")
	}

	return nil
}

// RevokeRefreshTokens invalidates all refresh tokens of the user.
func (g *Gateway) RevokeRefreshTokens(ctx context.Context, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	if err := g.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return errors.Wrap(err, "failed to revoke refresh tokens")
	}

	return nil
}

// SendPasswordReset asks the provider to mail a password-reset link.
func (g *Gateway) SendPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	return g.rest.sendPasswordReset(ctx, email)
}

func toIdentityUser(record *auth.UserRecord) *entity.IdentityUser {
	user := &entity.IdentityUser{
		Disabled:      record.Disabled,
		EmailVerified: record.EmailVerified,
	}

	if record.UserInfo != nil {
		user.UID = record.UserInfo.UID
		user.Email = record.UserInfo.Email
		user.DisplayName = record.UserInfo.DisplayName
		user.PhotoURL = record.UserInfo.PhotoURL
	}

	if record.UserMetadata != nil {
		user.CreatedAt = time.UnixMilli(record.UserMetadata.CreationTimestamp)
	}

	return user
}
