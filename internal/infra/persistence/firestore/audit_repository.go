package firestore

import (
	"context"

	"cinescope/internal/domain/entity"
	"cinescope/internal/domain/repository"
	"cinescope/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

type auditRepository struct {
	client *firestore.Client
}

// NewAuditRepository is the constructor for the Firestore-backed
// AuditRepository.
func NewAuditRepository(client *firestore.Client) repository.AuditRepository {
	return &auditRepository{client: client}
}

// Append writes the event with Create so an existing id can never be
// overwritten; the log is append-only.
func (r *auditRepository) Append(ctx context.Context, event *entity.AuditEvent) error {
	docRef := r.client.Collection(collectionAuditLogs).Doc(event.ID)

	if _, err := docRef.Create(ctx, model.FromAuditEntity(event)); err != nil {
		return errors.Wrap(err, "failed to append audit event")
	}

	return nil
}
