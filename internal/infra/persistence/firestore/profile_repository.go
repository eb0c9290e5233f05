package firestore

import (
	"context"
	"strings"

	"cinescope/internal/domain/entity"
	"cinescope/internal/domain/repository"
	"cinescope/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type profileRepository struct {
	client *firestore.Client
}

// NewProfileRepository is the constructor for the Firestore-backed
// ProfileRepository.
func NewProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) Get(ctx context.Context, uid string) (*entity.Profile, error) {
	snapshot, err := r.client.Collection(collectionProfiles).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to get profile document")
	}

	var doc model.ProfileModel
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile document")
	}

	return doc.ToEntity(uid), nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	iter := r.client.Collection(collectionProfiles).
		Where("email", "==", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snapshot, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, repository.ErrProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query profile by email")
	}

	var doc model.ProfileModel
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile document")
	}

	return doc.ToEntity(snapshot.Ref.ID), nil
}

func (r *profileRepository) Set(ctx context.Context, profile *entity.Profile) error {
	doc := model.FromProfileEntity(profile)
	doc.Email = strings.ToLower(strings.TrimSpace(doc.Email))

	if _, err := r.client.Collection(collectionProfiles).Doc(profile.UID).Set(ctx, doc); err != nil {
		return errors.Wrap(err, "failed to write profile document")
	}

	return nil
}

func (r *profileRepository) Update(ctx context.Context, uid string, fields map[string]any) error {
	if _, err := r.client.Collection(collectionProfiles).Doc(uid).Set(ctx, fields, firestore.MergeAll); err != nil {
		return errors.Wrap(err, "failed to merge profile fields")
	}

	return nil
}
