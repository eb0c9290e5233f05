// Package model contains the persistence representations of the domain
// entities, kept separate so storage tags never leak into the domain.
package model

import (
	"time"

	"cinescope/internal/domain/entity"
)

// ProfileModel is the Firestore document shape of a profile.
type ProfileModel struct {
	Name                 string     `firestore:"name"`
	Email                string     `firestore:"email"`
	AvatarURL            string     `firestore:"avatarUrl"`
	PasswordHashBackup   string     `firestore:"passwordHashBackup"`
	Status               string     `firestore:"status"`
	DeletedAt            *time.Time `firestore:"deletedAt"`
	DeletionScheduledFor *time.Time `firestore:"deletionScheduledFor"`
	CreatedAt            time.Time  `firestore:"createdAt"`
	UpdatedAt            time.Time  `firestore:"updatedAt"`
}

// FromProfileEntity converts a domain profile into its document shape.
func FromProfileEntity(profile *entity.Profile) *ProfileModel {
	return &ProfileModel{
		Name:                 profile.Name,
		Email:                profile.Email,
		AvatarURL:            profile.AvatarURL,
		PasswordHashBackup:   profile.PasswordHashBackup,
		Status:               string(profile.Status),
		DeletedAt:            profile.DeletedAt,
		DeletionScheduledFor: profile.DeletionScheduledFor,
		CreatedAt:            profile.CreatedAt,
		UpdatedAt:            profile.UpdatedAt,
	}
}

// ToEntity converts the document back into a domain profile.
func (m *ProfileModel) ToEntity(uid string) *entity.Profile {
	return &entity.Profile{
		UID:                  uid,
		Name:                 m.Name,
		Email:                m.Email,
		AvatarURL:            m.AvatarURL,
		PasswordHashBackup:   m.PasswordHashBackup,
		Status:               entity.ProfileStatus(m.Status),
		DeletedAt:            m.DeletedAt,
		DeletionScheduledFor: m.DeletionScheduledFor,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
