package service

import (
	"context"

	"cinescope/internal/domain/entity"
)

// AuditLogger records security-relevant events, fire-and-forget: a failure
// to persist an event must never fail or delay the triggering operation.
type AuditLogger interface {
	Record(ctx context.Context, event entity.AuditEvent)
}
