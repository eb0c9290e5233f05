package repository

import (
	"context"

	"cinescope/internal/domain/entity"
)

// AuditRepository appends immutable audit events. Events are never updated
// or deleted by this service.
type AuditRepository interface {
	Append(ctx context.Context, event *entity.AuditEvent) error
}
