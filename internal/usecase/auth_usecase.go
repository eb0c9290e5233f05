// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"cinescope/internal/domain/entity"
)

// RequestMeta carries per-request client attributes used for lockout
// bookkeeping and audit trails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// --- Input DTOs ---

// SignUpInput defines the data required to create a new account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Meta     RequestMeta
}

// SignInInput defines the data required to authenticate with email and password.
type SignInInput struct {
	Email    string
	Password string
	Meta     RequestMeta
}

// ForgotPasswordInput requests a password-reset email.
type ForgotPasswordInput struct {
	Email string
	Meta  RequestMeta
}

// CheckEmailInput asks whether an address is already registered.
type CheckEmailInput struct {
	Email string
}

// ResetPasswordInput sets a new password for an account identified by email.
type ResetPasswordInput struct {
	Email       string
	NewPassword string
	Meta        RequestMeta
}

// ChangePasswordInput sets a new password for the authenticated account.
type ChangePasswordInput struct {
	Claims      *entity.TokenClaims
	NewPassword string
	Meta        RequestMeta
}

// --- Output DTOs ---

// SessionOutput returns the authenticated user together with fresh tokens.
type SessionOutput struct {
	User         *entity.IdentityUser
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// CheckEmailOutput reports whether an address is registered.
type CheckEmailOutput struct {
	Exists bool
}

// AuthUsecase defines the interface for authentication operations.
// This is the contract that the delivery layer depends on.
type AuthUsecase interface {
	SignUp(ctx context.Context, input *SignUpInput) (*SessionOutput, error)
	SignIn(ctx context.Context, input *SignInInput) (*SessionOutput, error)
	Verify(ctx context.Context, idToken string) (*entity.TokenClaims, error)
	ForgotPassword(ctx context.Context, input *ForgotPasswordInput) error
	CheckEmail(ctx context.Context, input *CheckEmailInput) (*CheckEmailOutput, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
}
