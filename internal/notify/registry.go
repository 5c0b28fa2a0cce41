// Package notify implements the notification routing table, recipient
// resolution, and fan-out dispatch for domain events.
package notify

import (
	"github.com/gigforge/gigforge/internal/domain"
)

// Template is a message template with {placeholder} tokens resolved
// from the event payload at dispatch time.
type Template struct {
	Title   string
	Message string
}

// Rule is one routing rule: which role hears about an event, with what
// message, on which realtime channel. Key distinguishes multiple rules
// for the same event and is part of the notification idempotency key.
type Rule struct {
	Event    domain.EventType
	Key      string
	Role     domain.Role
	Template Template
	Channel  string
	Type     domain.NotificationType
}

// Registry is the precompiled routing table, indexed by event type for
// O(1) rule lookup. Built once at startup and read-only afterwards.
type Registry struct {
	rules map[domain.EventType][]Rule
}

// NewRegistry builds a registry from the given rules.
func NewRegistry(rules []Rule) *Registry {
	indexed := make(map[domain.EventType][]Rule, len(rules))
	for _, r := range rules {
		indexed[r.Event] = append(indexed[r.Event], r)
	}
	return &Registry{rules: indexed}
}

// RulesFor returns the rules matching an event type, in registration order.
func (r *Registry) RulesFor(event domain.EventType) []Rule {
	return r.rules[event]
}

// DefaultRules is the platform routing table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Event:    domain.EventProjectCreated,
			Key:      "project_created_admin",
			Role:     domain.RoleAdmin,
			Template: Template{Title: "New project posted", Message: "Project {projectTitle} was created and awaits review."},
			Channel:  "project:created",
			Type:     domain.NotificationTypeProject,
		},
		{
			Event:    domain.EventProjectStatusChanged,
			Key:      "project_status_client",
			Role:     domain.RoleClient,
			Template: Template{Title: "Project status updated", Message: "Your project {projectTitle} moved from {oldStatus} to {newStatus}."},
			Channel:  "project:status",
			Type:     domain.NotificationTypeProject,
		},
		{
			Event:    domain.EventProjectStatusChanged,
			Key:      "project_status_admin",
			Role:     domain.RoleAdmin,
			Template: Template{Title: "Project status changed", Message: "Project {projectTitle} moved from {oldStatus} to {newStatus}."},
			Channel:  "project:status",
			Type:     domain.NotificationTypeProject,
		},
		{
			Event:    domain.EventProjectStatusChanged,
			Key:      "project_status_agent",
			Role:     domain.RoleAgent,
			Template: Template{Title: "Project status changed", Message: "Project {projectTitle} moved from {oldStatus} to {newStatus}."},
			Channel:  "project:status",
			Type:     domain.NotificationTypeProject,
		},
		{
			Event:    domain.EventBidPlaced,
			Key:      "bid_placed_admin",
			Role:     domain.RoleAdmin,
			Template: Template{Title: "New bidding received", Message: "{freelancerName} placed a bidding on {projectTitle}."},
			Channel:  "bid:placed",
			Type:     domain.NotificationTypeBid,
		},
		{
			Event:    domain.EventBidShortlisted,
			Key:      "bid_shortlisted_freelancer",
			Role:     domain.RoleFreelancer,
			Template: Template{Title: "You were shortlisted", Message: "Your bidding on {projectTitle} was shortlisted."},
			Channel:  "bid:shortlisted",
			Type:     domain.NotificationTypeBid,
		},
		{
			Event:    domain.EventBidAccepted,
			Key:      "bid_accepted_freelancer",
			Role:     domain.RoleFreelancer,
			Template: Template{Title: "Your bidding was accepted", Message: "Congratulations, your bidding on {projectTitle} was accepted."},
			Channel:  "bid:accepted",
			Type:     domain.NotificationTypeBid,
		},
		{
			Event:    domain.EventBidAccepted,
			Key:      "bid_accepted_client",
			Role:     domain.RoleClient,
			Template: Template{Title: "Freelancer selected", Message: "{freelancerName} was selected for your project {projectTitle}."},
			Channel:  "bid:accepted",
			Type:     domain.NotificationTypeBid,
		},
		{
			Event:    domain.EventBidRejected,
			Key:      "bid_rejected_freelancer",
			Role:     domain.RoleFreelancer,
			Template: Template{Title: "Bidding not selected", Message: "Your bidding on {projectTitle} was not selected."},
			Channel:  "bid:rejected",
			Type:     domain.NotificationTypeBid,
		},
		{
			Event:    domain.EventMilestoneCreated,
			Key:      "milestone_created_client",
			Role:     domain.RoleClient,
			Template: Template{Title: "Milestone added", Message: "Milestone {milestoneTitle} was added to {projectTitle}."},
			Channel:  "milestone:created",
			Type:     domain.NotificationTypeMilestone,
		},
		{
			Event:    domain.EventMilestoneCompleted,
			Key:      "milestone_completed_client",
			Role:     domain.RoleClient,
			Template: Template{Title: "Milestone completed", Message: "Milestone {milestoneTitle} on {projectTitle} was completed."},
			Channel:  "milestone:completed",
			Type:     domain.NotificationTypeMilestone,
		},
		{
			Event:    domain.EventPaymentRequested,
			Key:      "payment_requested_client",
			Role:     domain.RoleClient,
			Template: Template{Title: "Payment requested", Message: "Payment of {amount} was requested for milestone {milestoneTitle} on {projectTitle}."},
			Channel:  "payment:requested",
			Type:     domain.NotificationTypePayment,
		},
		{
			Event:    domain.EventPaymentCompleted,
			Key:      "payment_completed_freelancer",
			Role:     domain.RoleFreelancer,
			Template: Template{Title: "Payment released", Message: "Payment of {amount} for milestone {milestoneTitle} on {projectTitle} was released."},
			Channel:  "payment:completed",
			Type:     domain.NotificationTypePayment,
		},
	}
}
