package repository

import (
	"context"

	"cinescope/internal/domain/entity"
	"cinescope/internal/errors"
)

// ErrLockoutNotFound is returned when no attempt counter exists for the key.
var ErrLockoutNotFound = errors.New("lockout record not found")

// LockoutRepository persists failed sign-in attempt counters.
type LockoutRepository interface {
	Get(ctx context.Context, key string) (*entity.Lockout, error)
	Save(ctx context.Context, record *entity.Lockout) error
	Delete(ctx context.Context, key string) error
}
