// Package repository defines the persistence interfaces of the domain layer.
package repository

import (
	"context"

	"cinescope/internal/domain/entity"
	"cinescope/internal/errors"
)

// ErrProfileNotFound is returned when no profile document exists for the key.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository persists application-level user documents.
type ProfileRepository interface {
	// Get returns the profile for a user id.
	Get(ctx context.Context, uid string) (*entity.Profile, error)

	// GetByEmail returns the profile with the given email.
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)

	// Set writes the whole profile document, creating it when missing.
	Set(ctx context.Context, profile *entity.Profile) error

	// Update merges the given fields into an existing document.
	Update(ctx context.Context, uid string, fields map[string]any) error
}
