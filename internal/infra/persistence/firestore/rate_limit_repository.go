package firestore

import (
	"context"
	"time"

	"cinescope/internal/domain/entity"
	"cinescope/internal/domain/repository"
	"cinescope/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type rateLimitRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewRateLimitRepository is the constructor for the Firestore-backed
// RateLimitRepository.
func NewRateLimitRepository(client *firestore.Client) repository.RateLimitRepository {
	return &rateLimitRepository{client: client, now: time.Now}
}

// IncrementAndMaybeReset runs the read-modify-write inside a Firestore
// transaction so two concurrent requests for the same key cannot
// under-count attempts.
func (r *rateLimitRepository) IncrementAndMaybeReset(ctx context.Context, key string, max int, window time.Duration) (*entity.RateLimit, error) {
	docRef := r.client.Collection(collectionRateLimits).Doc(key)

	var record *entity.RateLimit
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()

		snapshot, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return errors.Wrap(err, "failed to get rate limit document")
		}

		if err != nil || snapshot == nil || !snapshot.Exists() {
			record = freshWindow(key, now, window)

			return tx.Set(docRef, model.FromRateLimitEntity(record))
		}

		var doc model.RateLimitModel
		if err := snapshot.DataTo(&doc); err != nil {
			return errors.Wrap(err, "failed to decode rate limit document")
		}
		current := doc.ToEntity(key)

		if current.WindowElapsed(now, window) {
			record = freshWindow(key, now, window)

			return tx.Set(docRef, model.FromRateLimitEntity(record))
		}

		// The counter tops out at max+1: one increment past the quota marks
		// the window as exhausted, later requests only refresh the
		// observation time.
		if current.Count <= max {
			current.Count++
		}
		current.LastRequestAt = now
		record = current

		return tx.Set(docRef, model.FromRateLimitEntity(current))
	})
	if err != nil {
		return nil, errors.Wrap(err, "rate limit transaction failed")
	}

	return record, nil
}

func freshWindow(key string, now time.Time, window time.Duration) *entity.RateLimit {
	return &entity.RateLimit{
		Key:            key,
		Count:          1,
		FirstRequestAt: now,
		LastRequestAt:  now,
		ResetAt:        now.Add(window),
	}
}
