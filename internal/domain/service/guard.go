package service

import (
	"context"
	"time"
)

// Decision is the outcome of a guard check. Guards never decide the
// fail-open policy themselves: a storage problem yields DecisionUnknown
// and the composing layer chooses what to do with it.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionReject
	DecisionUnknown
)

// RateLimitResult carries the outcome of a fixed-window quota check.
type RateLimitResult struct {
	Decision  Decision
	Limit     int
	Remaining int
	ResetAt   time.Time

	// Err is set only when Decision is DecisionUnknown.
	Err error
}

// Allowed is a convenience for callers applying a fail-open policy.
func (r RateLimitResult) Allowed() bool {
	return r.Decision != DecisionReject
}

// RateLimiter counts requests per key in fixed windows. Reusable across
// endpoints; the key should be prefixed per route.
type RateLimiter interface {
	Check(ctx context.Context, key string, max int, window time.Duration) RateLimitResult
}

// LockStatus carries the outcome of a lockout check or a recorded failure.
type LockStatus struct {
	Decision  Decision
	Attempts  int
	LockUntil *time.Time

	// Err is set only when Decision is DecisionUnknown.
	Err error
}

// Locked is a convenience for callers applying a fail-open policy.
func (s LockStatus) Locked() bool {
	return s.Decision == DecisionReject
}

// RemainingLock returns how long the lock still holds at the given time.
func (s LockStatus) RemainingLock(now time.Time) time.Duration {
	if s.LockUntil == nil {
		return 0
	}

	remaining := s.LockUntil.Sub(now)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// LockoutGuard drives temporary account locks after repeated sign-in
// failures for an email and client IP pair.
type LockoutGuard interface {
	CheckLock(ctx context.Context, email, ip string) LockStatus
	RecordFailedAttempt(ctx context.Context, email, ip string) LockStatus
	ClearFailedAttempts(ctx context.Context, email, ip string) error
}
