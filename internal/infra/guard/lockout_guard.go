package guard

import (
	"context"
	"log/slog"
	"time"

	"cinescope/config"
	deliverycontext "cinescope/internal/delivery/context"
	"cinescope/internal/domain/entity"
	"cinescope/internal/domain/repository"
	"cinescope/internal/domain/service"
	"cinescope/internal/errors"
)

type lockoutGuard struct {
	repo         repository.LockoutRepository
	maxAttempts  int
	window       time.Duration
	lockDuration time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewLockoutGuard is the constructor for the failed-login LockoutGuard.
func NewLockoutGuard(repo repository.LockoutRepository, cfg *config.Config, logger *slog.Logger) service.LockoutGuard {
	return &lockoutGuard{
		repo:         repo,
		maxAttempts:  cfg.Auth.MaxFailedAttempts,
		window:       cfg.Auth.AttemptWindow,
		lockDuration: cfg.Auth.LockDuration,
		now:          time.Now,
		logger:       logger,
	}
}

func (g *lockoutGuard) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, g.logger)
}

// CheckLock reports whether the email:ip pair is currently locked. An
// expired lock is treated as absent and pruned on sight.
func (g *lockoutGuard) CheckLock(ctx context.Context, email, ip string) service.LockStatus {
	key := entity.LockoutKey(email, ip)

	record, err := g.repo.Get(ctx, key)
	if errors.Is(err, repository.ErrLockoutNotFound) {
		return service.LockStatus{Decision: service.DecisionAllow}
	}
	if err != nil {
		g.log(ctx).Warn("Lockout check failed, result unknown",
			slog.String("key", key),
			slog.Any("error", err))

		return service.LockStatus{Decision: service.DecisionUnknown, Err: err}
	}

	now := g.now()

	if record.LockActive(now) {
		return service.LockStatus{
			Decision:  service.DecisionReject,
			Attempts:  record.Attempts,
			LockUntil: record.LockUntil,
		}
	}

	// A lock whose deadline has passed must behave as if it never
	// existed; prune it so the next failure starts a clean window.
	if record.Locked {
		if err := g.repo.Delete(ctx, key); err != nil {
			g.log(ctx).Warn("Failed to prune expired lockout record",
				slog.String("key", key),
				slog.Any("error", err))
		}
	}

	return service.LockStatus{Decision: service.DecisionAllow, Attempts: record.Attempts}
}

// RecordFailedAttempt counts one failure for the email:ip pair, locking
// the key once the failure threshold is reached inside the window.
func (g *lockoutGuard) RecordFailedAttempt(ctx context.Context, email, ip string) service.LockStatus {
	key := entity.LockoutKey(email, ip)
	now := g.now()

	record, err := g.repo.Get(ctx, key)
	if err != nil && !errors.Is(err, repository.ErrLockoutNotFound) {
		g.log(ctx).Warn("Failed to load lockout record",
			slog.String("key", key),
			slog.Any("error", err))

		return service.LockStatus{Decision: service.DecisionUnknown, Err: err}
	}

	if err != nil || record.WindowElapsed(now, g.window) || (record.Locked && !record.LockActive(now)) {
		record = &entity.Lockout{Key: key, FirstFailAt: now}
	}

	record.Attempts++
	record.LastFailAt = now

	if record.Attempts >= g.maxAttempts {
		lockUntil := now.Add(g.lockDuration)
		record.Locked = true
		record.LockUntil = &lockUntil
	}

	if err := g.repo.Save(ctx, record); err != nil {
		g.log(ctx).Warn("Failed to save lockout record",
			slog.String("key", key),
			slog.Any("error", err))

		return service.LockStatus{Decision: service.DecisionUnknown, Err: err}
	}

	status := service.LockStatus{
		Decision:  service.DecisionAllow,
		Attempts:  record.Attempts,
		LockUntil: record.LockUntil,
	}
	if record.LockActive(now) {
		status.Decision = service.DecisionReject
	}

	return status
}

// ClearFailedAttempts removes the counter after a successful
// authentication for the same key.
func (g *lockoutGuard) ClearFailedAttempts(ctx context.Context, email, ip string) error {
	key := entity.LockoutKey(email, ip)

	if err := g.repo.Delete(ctx, key); err != nil {
		return errors.Wrap(err, "failed to clear failed attempts")
	}

	return nil
}
