// Package guard implements the request guards: the generic fixed-window
// rate limiter and the failed-login lockout. Guards report storage
// problems as DecisionUnknown and leave the fail-open policy to the
// composing layer.
package guard

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "cinescope/internal/delivery/context"
	"cinescope/internal/domain/repository"
	"cinescope/internal/domain/service"
)

type rateLimiter struct {
	repo   repository.RateLimitRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter is the constructor for the fixed-window RateLimiter.
func NewRateLimiter(repo repository.RateLimitRepository, logger *slog.Logger) service.RateLimiter {
	return &rateLimiter{repo: repo, now: time.Now, logger: logger}
}

func (l *rateLimiter) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, l.logger)
}

// Check counts the request against the key's current window.
func (l *rateLimiter) Check(ctx context.Context, key string, max int, window time.Duration) service.RateLimitResult {
	record, err := l.repo.IncrementAndMaybeReset(ctx, key, max, window)
	if err != nil {
		l.log(ctx).Warn("Rate limit check failed, result unknown",
			slog.String("key", key),
			slog.Any("error", err))

		return service.RateLimitResult{Decision: service.DecisionUnknown, Limit: max, Err: err}
	}

	remaining := max - record.Count
	if remaining < 0 {
		remaining = 0
	}

	result := service.RateLimitResult{
		Decision:  service.DecisionAllow,
		Limit:     max,
		Remaining: remaining,
		ResetAt:   record.ResetAt,
	}
	if record.Count > max {
		result.Decision = service.DecisionReject
	}

	return result
}
