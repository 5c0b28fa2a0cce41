package domain

import "time"

// TimelineAction is the machine-readable verb recorded for a committed
// status transition, distinct from any human-readable title.
type TimelineAction string

const (
	ActionPostProject     TimelineAction = "post_project"
	ActionHoldProject     TimelineAction = "hold_project"
	ActionCancelProject   TimelineAction = "cancel_project"
	ActionResumeProject   TimelineAction = "resume_project"
	ActionCreateBidding   TimelineAction = "create_bidding"
	ActionAwardBidding    TimelineAction = "award_bidding"
	ActionApproveProject  TimelineAction = "approve_project"
	ActionRejectProject   TimelineAction = "reject_project"
	ActionCompleteProject TimelineAction = "complete_project"
)

// TimelineEntry is an immutable record of one committed status
// transition on a project. Entries are append-only: created exactly
// once per transition, never mutated or deleted.
type TimelineEntry struct {
	ID        string
	ProjectID string
	ActorID   *string // nil for system transitions
	ActorRole Role
	OldStatus ProjectStatus
	NewStatus ProjectStatus
	Action    TimelineAction
	Remark    string
	CreatedAt time.Time
}

// IsSystemEntry returns true if the transition was applied by the system.
func (e *TimelineEntry) IsSystemEntry() bool {
	return e.ActorID == nil
}
