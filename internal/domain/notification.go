package domain

import "time"

// NotificationType is the coarse UI category of a notification. It is a
// small closed set, distinct from the finer-grained routing event key.
type NotificationType string

const (
	NotificationTypeProject   NotificationType = "project"
	NotificationTypeBid       NotificationType = "bid"
	NotificationTypeMilestone NotificationType = "milestone"
	NotificationTypePayment   NotificationType = "payment"
	NotificationTypeMessage   NotificationType = "message"
	NotificationTypeDispute   NotificationType = "dispute"
)

// IsValid checks if the type is one of the allowed values.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeProject, NotificationTypeBid, NotificationTypeMilestone,
		NotificationTypePayment, NotificationTypeMessage, NotificationTypeDispute:
		return true
	default:
		return false
	}
}

// Notification is a per-recipient delivery record. EventID plus RuleKey
// plus UserID form the idempotency key: redelivering the same event
// through the same routing rule never creates a second row.
type Notification struct {
	ID               string
	UserID           string
	EventID          string
	RuleKey          string
	Type             NotificationType
	Title            string
	Message          string
	RelatedProjectID *string
	Metadata         map[string]any
	IsRead           bool
	ReadAt           *time.Time
	CreatedAt        time.Time
}
