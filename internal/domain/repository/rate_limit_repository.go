package repository

import (
	"context"
	"time"

	"cinescope/internal/domain/entity"
)

// RateLimitRepository persists fixed-window request counters.
//
// IncrementAndMaybeReset hides the read-modify-write sequence behind a
// single call so an implementation can use the store's transaction or
// atomic-increment primitive without touching callers: a fresh key starts
// a window at count 1, an elapsed window resets to count 1, and the count
// stops one past max so an exhausted window is not inflated further.
type RateLimitRepository interface {
	IncrementAndMaybeReset(ctx context.Context, key string, max int, window time.Duration) (*entity.RateLimit, error)
}
