package dto

import (
	"time"

	"github.com/gigforge/gigforge/internal/domain"
)

// ProjectDetail is the response shape for a project.
type ProjectDetail struct {
	ID                   string    `json:"id"`
	ClientID             string    `json:"client_id"`
	ClientName           string    `json:"client_name,omitempty"`
	AssignedAgentID      *string   `json:"assigned_agent_id,omitempty"`
	AssignedFreelancerID *string   `json:"assigned_freelancer_id,omitempty"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Status               string    `json:"status"`
	StatusRemark         string    `json:"status_remark,omitempty"`
	IsOpenForBidding     bool      `json:"is_open_for_bidding"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewProjectDetail converts a domain project to its response shape.
func NewProjectDetail(p *domain.Project) ProjectDetail {
	return ProjectDetail{
		ID:                   p.ID,
		ClientID:             p.ClientID,
		AssignedAgentID:      p.AssignedAgentID,
		AssignedFreelancerID: p.AssignedFreelancerID,
		Title:                p.Title,
		Description:          p.Description,
		Status:               string(p.Status),
		StatusRemark:         p.StatusRemark,
		IsOpenForBidding:     p.IsOpenForBidding,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// TimelineEntryDetail is the response shape for a timeline entry.
type TimelineEntryDetail struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	ActorID   *string   `json:"actor_id,omitempty"`
	ActorRole string    `json:"actor_role"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Action    string    `json:"action"`
	Remark    string    `json:"remark,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTimelineEntryDetail converts a domain timeline entry to its response shape.
func NewTimelineEntryDetail(e *domain.TimelineEntry) TimelineEntryDetail {
	return TimelineEntryDetail{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		ActorID:   e.ActorID,
		ActorRole: string(e.ActorRole),
		OldStatus: string(e.OldStatus),
		NewStatus: string(e.NewStatus),
		Action:    string(e.Action),
		Remark:    e.Remark,
		CreatedAt: e.CreatedAt,
	}
}

// BiddingDetail is the response shape for a bidding.
type BiddingDetail struct {
	ID            string    `json:"id"`
	BidID         string    `json:"bid_id"`
	ProjectID     string    `json:"project_id"`
	FreelancerID  string    `json:"freelancer_id"`
	Amount        int64     `json:"amount"`
	TimelineDays  int       `json:"timeline_days"`
	Proposal      string    `json:"proposal"`
	Status        string    `json:"status"`
	IsShortlisted bool      `json:"is_shortlisted"`
	IsAccepted    bool      `json:"is_accepted"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBiddingDetail converts a domain bidding to its response shape.
func NewBiddingDetail(b *domain.Bidding) BiddingDetail {
	return BiddingDetail{
		ID:            b.ID,
		BidID:         b.BidID,
		ProjectID:     b.ProjectID,
		FreelancerID:  b.FreelancerID,
		Amount:        b.Amount,
		TimelineDays:  b.TimelineDays,
		Proposal:      b.Proposal,
		Status:        string(b.Status),
		IsShortlisted: b.IsShortlisted,
		IsAccepted:    b.IsAccepted,
		CreatedAt:     b.CreatedAt,
	}
}

// NotificationDetail is the response shape for a notification.
type NotificationDetail struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	RelatedProjectID *string   `json:"related_project_id,omitempty"`
	IsRead           bool      `json:"is_read"`
	CreatedAt        time.Time `json:"created_at"`
}

// NotificationList is a cursor-paginated page of notifications.
type NotificationList struct {
	Notifications []NotificationDetail `json:"notifications"`
	NextCursor    string               `json:"next_cursor,omitempty"`
}

// NewNotificationList converts domain notifications to a response page.
func NewNotificationList(notifications []*domain.Notification, nextCursor string) NotificationList {
	out := NotificationList{
		Notifications: make([]NotificationDetail, 0, len(notifications)),
		NextCursor:    nextCursor,
	}
	for _, n := range notifications {
		out.Notifications = append(out.Notifications, NotificationDetail{
			ID:               n.ID,
			Type:             string(n.Type),
			Title:            n.Title,
			Message:          n.Message,
			RelatedProjectID: n.RelatedProjectID,
			IsRead:           n.IsRead,
			CreatedAt:        n.CreatedAt,
		})
	}
	return out
}

// MilestoneDetail is the response shape for a milestone.
type MilestoneDetail struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Title         string    `json:"title"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	IsPaid        bool      `json:"is_paid"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewMilestoneDetail converts a domain milestone to its response shape.
func NewMilestoneDetail(m *domain.Milestone) MilestoneDetail {
	return MilestoneDetail{
		ID:            m.ID,
		ProjectID:     m.ProjectID,
		Title:         m.Title,
		Amount:        m.Amount,
		Status:        string(m.Status),
		PaymentStatus: string(m.PaymentStatus),
		IsPaid:        m.IsPaid,
		CreatedAt:     m.CreatedAt,
	}
}
