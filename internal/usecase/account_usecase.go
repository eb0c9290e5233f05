package usecase

import (
	"context"
	"time"

	"cinescope/internal/domain/entity"
)

// DeleteAccountInput soft-deletes the authenticated account after
// re-verifying the password.
type DeleteAccountInput struct {
	Claims   *entity.TokenClaims
	Password string
	Meta     RequestMeta
}

// DeleteAccountOutput reports when the account will be permanently removed.
type DeleteAccountOutput struct {
	DeletionDate time.Time
}

// ReactivateAccountInput restores the authenticated account before its
// deletion deadline.
type ReactivateAccountInput struct {
	Claims *entity.TokenClaims
	Meta   RequestMeta
}

// ReEnableAccountInput restores a pending-deletion account identified by
// email, for callers who can no longer sign in.
type ReEnableAccountInput struct {
	Email string
	Meta  RequestMeta
}

// AccountUsecase defines the interface for account lifecycle operations.
type AccountUsecase interface {
	Delete(ctx context.Context, input *DeleteAccountInput) (*DeleteAccountOutput, error)
	Reactivate(ctx context.Context, input *ReactivateAccountInput) error
	ReEnableByEmail(ctx context.Context, input *ReEnableAccountInput) error
}
