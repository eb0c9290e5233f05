package entity

import (
	"strings"
	"time"
)

// Lockout tracks failed sign-in attempts for an email:ip pair.
type Lockout struct {
	Key         string
	Attempts    int
	FirstFailAt time.Time
	LastFailAt  time.Time
	LockUntil   *time.Time
	Locked      bool
}

// LockoutKey builds the composite counter key for an email and client IP.
func LockoutKey(email, ip string) string {
	return strings.ToLower(strings.TrimSpace(email)) + ":" + ip
}

// LockActive reports whether the record currently denies authentication.
// A lock whose deadline has passed must be treated as absent regardless of
// the stored Locked flag.
func (l *Lockout) LockActive(now time.Time) bool {
	if !l.Locked || l.LockUntil == nil {
		return false
	}

	return now.Before(*l.LockUntil)
}

// WindowElapsed reports whether the attempt window has expired, meaning the
// counter should restart from scratch on the next failure.
func (l *Lockout) WindowElapsed(now time.Time, window time.Duration) bool {
	return now.Sub(l.FirstFailAt) >= window
}
