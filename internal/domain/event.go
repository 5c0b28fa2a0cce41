package domain

import "time"

// EventType identifies a domain event in the typed catalog. Routing
// rules are keyed by these values.
type EventType string

const (
	EventProjectCreated       EventType = "PROJECT_CREATED"
	EventProjectStatusChanged EventType = "PROJECT_STATUS_CHANGED"
	EventBidPlaced            EventType = "BID_PLACED"
	EventBidShortlisted       EventType = "BID_SHORTLISTED"
	EventBidAccepted          EventType = "BID_ACCEPTED"
	EventBidRejected          EventType = "BID_REJECTED"
	EventMilestoneCreated     EventType = "MILESTONE_CREATED"
	EventMilestoneCompleted   EventType = "MILESTONE_COMPLETED"
	EventPaymentRequested     EventType = "PAYMENT_REQUESTED"
	EventPaymentCompleted     EventType = "PAYMENT_COMPLETED"
)

// Payload carries event-specific fields by well-known key.
type Payload map[string]any

// String returns the payload value under key as a string, or "" when
// the key is absent or not a string.
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Event is one occurrence of a domain event. ID is assigned when the
// event is first recorded and stays stable across redeliveries.
type Event struct {
	ID         string
	Type       EventType
	ProjectID  string
	ActorID    *string
	Payload    Payload
	OccurredAt time.Time
}

// Well-known payload keys shared by producers and the recipient resolver.
const (
	PayloadKeyProjectID      = "projectId"
	PayloadKeyProjectTitle   = "projectTitle"
	PayloadKeyClientID       = "clientId"
	PayloadKeyFreelancerID   = "freelancerId"
	PayloadKeyBidderID       = "bidderId"
	PayloadKeyFreelancerName = "freelancerName"
	PayloadKeyOldStatus      = "oldStatus"
	PayloadKeyNewStatus      = "newStatus"
	PayloadKeyRemark         = "remark"
	PayloadKeyMilestoneTitle = "milestoneTitle"
	PayloadKeyAmount         = "amount"
)
