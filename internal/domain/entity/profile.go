// Package entity contains the core business objects of the account service.
package entity

import "time"

// ProfileStatus is the lifecycle state of a profile document.
type ProfileStatus string

const (
	// ProfileStatusActive is the initial and normal state.
	ProfileStatusActive ProfileStatus = "active"

	// ProfileStatusPendingDeletion marks a soft-deleted profile awaiting
	// the external erasure sweep.
	ProfileStatusPendingDeletion ProfileStatus = "pending_deletion"
)

// Profile is the application-level user document held in the profile store,
// distinct from the identity provider's own user record.
type Profile struct {
	UID       string
	Name      string
	Email     string
	AvatarURL string

	// PasswordHashBackup is a bcrypt hash kept alongside the provider's
	// credential. The provider remains the source of truth.
	PasswordHashBackup string

	Status               ProfileStatus
	DeletedAt            *time.Time
	DeletionScheduledFor *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingDeletion reports whether the profile is soft-deleted.
func (p *Profile) PendingDeletion() bool {
	return p.Status == ProfileStatusPendingDeletion
}

// DeadlinePassed reports whether the grace window for reactivation has
// elapsed. A profile without a scheduled deletion has no deadline.
func (p *Profile) DeadlinePassed(now time.Time) bool {
	if p.DeletionScheduledFor == nil {
		return false
	}

	return now.After(*p.DeletionScheduledFor)
}

// MarkPendingDeletion transitions the profile into the grace window.
func (p *Profile) MarkPendingDeletion(now time.Time, grace time.Duration) {
	deadline := now.Add(grace)
	p.Status = ProfileStatusPendingDeletion
	p.DeletedAt = &now
	p.DeletionScheduledFor = &deadline
	p.UpdatedAt = now
}

// Restore clears the soft-delete state.
func (p *Profile) Restore(now time.Time) {
	p.Status = ProfileStatusActive
	p.DeletedAt = nil
	p.DeletionScheduledFor = nil
	p.UpdatedAt = now
}
