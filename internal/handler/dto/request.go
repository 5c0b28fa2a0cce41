package dto

// CreateProjectRequest represents the request body for POST /projects.
type CreateProjectRequest struct {
	ClientID    string `json:"client_id,omitempty"` // admins creating on a client's behalf
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TransitionRequest represents the request body for PATCH /projects/:id/status.
type TransitionRequest struct {
	Status       string `json:"status"`
	Remark       string `json:"remark,omitempty"`
	FreelancerID string `json:"freelancer_id,omitempty"` // award only
}

// PostBidRequest represents the request body for POST /projects/:id/bids.
type PostBidRequest struct {
	Description string `json:"description"`
}

// PlaceBiddingRequest represents the request body for POST /bids/:id/biddings.
type PlaceBiddingRequest struct {
	Amount       int64  `json:"amount"`
	TimelineDays int    `json:"timeline_days"`
	Proposal     string `json:"proposal"`
}

// CreateMilestoneRequest represents the request body for POST /projects/:id/milestones.
type CreateMilestoneRequest struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}

// AdvancePaymentRequest represents the request body for PATCH /milestones/:id/payment.
type AdvancePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}
