package model

import (
	"time"

	"cinescope/internal/domain/entity"
)

// LockoutModel is the Firestore document shape of a failed-attempt counter.
type LockoutModel struct {
	Attempts    int        `firestore:"attempts"`
	FirstFailAt time.Time  `firestore:"firstFailAt"`
	LastFailAt  time.Time  `firestore:"lastFailAt"`
	LockUntil   *time.Time `firestore:"lockUntil"`
	Locked      bool       `firestore:"locked"`
}

// FromLockoutEntity converts a domain lockout record into its document shape.
func FromLockoutEntity(record *entity.Lockout) *LockoutModel {
	return &LockoutModel{
		Attempts:    record.Attempts,
		FirstFailAt: record.FirstFailAt,
		LastFailAt:  record.LastFailAt,
		LockUntil:   record.LockUntil,
		Locked:      record.Locked,
	}
}

// ToEntity converts the document back into a domain lockout record.
func (m *LockoutModel) ToEntity(key string) *entity.Lockout {
	return &entity.Lockout{
		Key:         key,
		Attempts:    m.Attempts,
		FirstFailAt: m.FirstFailAt,
		LastFailAt:  m.LastFailAt,
		LockUntil:   m.LockUntil,
		Locked:      m.Locked,
	}
}

// RateLimitModel is the Firestore document shape of a fixed-window counter.
type RateLimitModel struct {
	Count          int       `firestore:"count"`
	FirstRequestAt time.Time `firestore:"firstRequestAt"`
	LastRequestAt  time.Time `firestore:"lastRequestAt"`
	ResetAt        time.Time `firestore:"resetAt"`
}

// FromRateLimitEntity converts a domain counter into its document shape.
func FromRateLimitEntity(record *entity.RateLimit) *RateLimitModel {
	return &RateLimitModel{
		Count:          record.Count,
		FirstRequestAt: record.FirstRequestAt,
		LastRequestAt:  record.LastRequestAt,
		ResetAt:        record.ResetAt,
	}
}

// ToEntity converts the document back into a domain counter.
func (m *RateLimitModel) ToEntity(key string) *entity.RateLimit {
	return &entity.RateLimit{
		Key:            key,
		Count:          m.Count,
		FirstRequestAt: m.FirstRequestAt,
		LastRequestAt:  m.LastRequestAt,
		ResetAt:        m.ResetAt,
	}
}
