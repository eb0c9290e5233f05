// Package service defines the domain-level service interfaces implemented
// by the infrastructure layer.
package service

import (
	"context"

	"cinescope/internal/domain/entity"
)

// IdentityProvider wraps the external identity provider: credential
// verification, token issuance and revocation, and user administration.
// Implementations translate provider error codes into the stable AppError
// taxonomy of internal/domain/errors.
type IdentityProvider interface {
	// SignInWithPassword performs the password-grant exchange and returns
	// fresh tokens on success.
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Credentials, error)

	// VerifyToken validates a bearer token and optionally checks whether
	// its session has been revoked.
	VerifyToken(ctx context.Context, idToken string, checkRevoked bool) (*entity.TokenClaims, error)

	GetUser(ctx context.Context, uid string) (*entity.IdentityUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.IdentityUser, error)

	CreateUser(ctx context.Context, email, password, displayName string) (*entity.IdentityUser, error)
	UpdatePassword(ctx context.Context, uid, newPassword string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error

	// RevokeRefreshTokens invalidates every refresh token of the user,
	// forcing re-authentication on all devices.
	RevokeRefreshTokens(ctx context.Context, uid string) error

	// SendPasswordReset asks the provider to mail a password-reset link.
	SendPasswordReset(ctx context.Context, email string) error
}
