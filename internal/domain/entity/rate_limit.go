package entity

import "time"

// RateLimit is a fixed-window request counter for a prefix:identity key.
type RateLimit struct {
	Key            string
	Count          int
	FirstRequestAt time.Time
	LastRequestAt  time.Time
	ResetAt        time.Time
}

// WindowElapsed reports whether the counter's window is over and the next
// observation starts a fresh one.
func (r *RateLimit) WindowElapsed(now time.Time, window time.Duration) bool {
	return now.Sub(r.FirstRequestAt) >= window
}
