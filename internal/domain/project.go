package domain

import "time"

// ProjectStatus represents the status of a project in the lifecycle state machine.
type ProjectStatus string

const (
	ProjectStatusDraft         ProjectStatus = "draft"
	ProjectStatusActive        ProjectStatus = "active"
	ProjectStatusPendingReview ProjectStatus = "pending_review"
	ProjectStatusInBidding     ProjectStatus = "in_bidding"
	ProjectStatusAssigned      ProjectStatus = "assigned"
	ProjectStatusInProgress    ProjectStatus = "in_progress"
	ProjectStatusHold          ProjectStatus = "hold"
	ProjectStatusCompleted     ProjectStatus = "completed"
	ProjectStatusCancelled     ProjectStatus = "cancelled"
	ProjectStatusRejected      ProjectStatus = "rejected"
)

// IsValid checks if the status is one of the allowed values.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusPendingReview,
		ProjectStatusInBidding, ProjectStatusAssigned, ProjectStatusInProgress,
		ProjectStatusHold, ProjectStatusCompleted, ProjectStatusCancelled,
		ProjectStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status allows no further transitions.
// Cancellation is recoverable through an explicit resume, so only
// completed is strictly terminal; both are treated as terminal for
// display purposes.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// AllowsAssignment returns true if a freelancer may be assigned while
// the project is in this status.
func (s ProjectStatus) AllowsAssignment() bool {
	return s == ProjectStatusAssigned || s == ProjectStatusInProgress || s == ProjectStatusCompleted
}

// RequiresRemark returns true if transitioning into this status demands
// a non-empty remark from the actor.
func (s ProjectStatus) RequiresRemark() bool {
	return s == ProjectStatusHold || s == ProjectStatusCancelled
}

// Project is the aggregate root of the marketplace lifecycle.
type Project struct {
	ID                   string
	ClientID             string
	AssignedAgentID      *string
	AssignedFreelancerID *string
	Title                string
	Description          string
	Status               ProjectStatus
	StatusRemark         string
	IsOpenForBidding     bool
	Milestones           []Milestone
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsOwnedBy checks if the project belongs to the given client.
func (p *Project) IsOwnedBy(userID string) bool {
	return p.ClientID == userID
}

// IsAssignedTo checks if the project is assigned to the given freelancer.
func (p *Project) IsAssignedTo(userID string) bool {
	return p.AssignedFreelancerID != nil && *p.AssignedFreelancerID == userID
}
