package domain

import "time"

// AuditSeverity classifies the weight of an audited action.
type AuditSeverity string

const (
	SeverityInfo     AuditSeverity = "info"
	SeverityWarning  AuditSeverity = "warning"
	SeverityCritical AuditSeverity = "critical"
)

// AuditLog is a write-once record of a sensitive action: who did what
// to whom, with before/after values. Queried but never updated.
type AuditLog struct {
	ID             string
	ActorID        *string // nil for system actions
	ActorRole      Role
	Action         string
	TargetKind     string
	TargetID       string
	Severity       AuditSeverity
	Description    string
	PreviousValues map[string]any
	NewValues      map[string]any
	Metadata       map[string]any
	CreatedAt      time.Time
}

// ActivityLog is a lighter-weight record of routine user activity,
// kept separately from the audit trail.
type ActivityLog struct {
	ID          string
	UserID      string
	Action      string
	TargetKind  string
	TargetID    string
	Description string
	CreatedAt   time.Time
}
