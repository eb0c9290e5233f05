package entity

import "time"

// AuditStatus is the terminal outcome recorded for a security-relevant action.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// Audit event types. One event per terminal outcome of each flow.
const (
	AuditEventSignup             = "signup"
	AuditEventSignin             = "signin"
	AuditEventPasswordReset      = "password_reset"
	AuditEventPasswordChange     = "password_change"
	AuditEventAccountDeleted     = "account_deleted"
	AuditEventAccountReactivated = "account_reactivated"
)

// AuditEvent is an immutable record of a security-relevant action.
type AuditEvent struct {
	ID        string
	Type      string
	UID       string
	Email     string
	IP        string
	UserAgent string
	Status    AuditStatus
	Details   map[string]string
	Timestamp time.Time
}
