package firestore

import (
	"context"

	"cinescope/internal/domain/entity"
	"cinescope/internal/domain/repository"
	"cinescope/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type lockoutRepository struct {
	client *firestore.Client
}

// NewLockoutRepository is the constructor for the Firestore-backed
// LockoutRepository.
func NewLockoutRepository(client *firestore.Client) repository.LockoutRepository {
	return &lockoutRepository{client: client}
}

func (r *lockoutRepository) Get(ctx context.Context, key string) (*entity.Lockout, error) {
	snapshot, err := r.client.Collection(collectionLockouts).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrLockoutNotFound
		}

		return nil, errors.Wrap(err, "failed to get lockout document")
	}

	var doc model.LockoutModel
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode lockout document")
	}

	return doc.ToEntity(key), nil
}

func (r *lockoutRepository) Save(ctx context.Context, record *entity.Lockout) error {
	doc := model.FromLockoutEntity(record)

	if _, err := r.client.Collection(collectionLockouts).Doc(record.Key).Set(ctx, doc); err != nil {
		return errors.Wrap(err, "failed to write lockout document")
	}

	return nil
}

func (r *lockoutRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.client.Collection(collectionLockouts).Doc(key).Delete(ctx); err != nil {
		return errors.Wrap(err, "failed to delete lockout document")
	}

	return nil
}
