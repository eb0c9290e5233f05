package model

import (
	"time"

	"cinescope/internal/domain/entity"
)

// AuditModel is the Firestore document shape of an audit event.
type AuditModel struct {
	Type      string            `firestore:"type"`
	UID       string            `firestore:"uid,omitempty"`
	Email     string            `firestore:"email,omitempty"`
	IP        string            `firestore:"ip"`
	UserAgent string            `firestore:"userAgent"`
	Status    string            `firestore:"status"`
	Details   map[string]string `firestore:"details,omitempty"`
	Timestamp time.Time         `firestore:"timestamp"`
}

// FromAuditEntity converts a domain audit event into its document shape.
func FromAuditEntity(event *entity.AuditEvent) *AuditModel {
	return &AuditModel{
		Type:      event.Type,
		UID:       event.UID,
		Email:     event.Email,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Status:    string(event.Status),
		Details:   event.Details,
		Timestamp: event.Timestamp,
	}
}
