package domain

import "time"

// BiddingStatus represents the status of a freelancer's proposal.
type BiddingStatus string

const (
	BiddingStatusPending     BiddingStatus = "pending"
	BiddingStatusShortlisted BiddingStatus = "shortlisted"
	BiddingStatusAccepted    BiddingStatus = "accepted"
	BiddingStatusRejected    BiddingStatus = "rejected"
	BiddingStatusWithdrawn   BiddingStatus = "withdrawn"
)

// IsValid checks if the status is one of the allowed values.
func (s BiddingStatus) IsValid() bool {
	switch s {
	case BiddingStatusPending, BiddingStatusShortlisted, BiddingStatusAccepted,
		BiddingStatusRejected, BiddingStatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsDecided returns true once the proposal reached a final decision.
func (s BiddingStatus) IsDecided() bool {
	return s == BiddingStatusAccepted || s == BiddingStatusRejected || s == BiddingStatusWithdrawn
}

// Bid is an admin-authored posting on a project that freelancers
// submit Biddings against.
type Bid struct {
	ID          string
	ProjectID   string
	PostedBy    string
	Description string
	Deadline    *time.Time
	CreatedAt   time.Time
}

// Bidding is a freelancer proposal against a posted Bid. The boolean
// flags mirror Status and must never disagree with it.
type Bidding struct {
	ID            string
	BidID         string
	ProjectID     string
	FreelancerID  string
	Amount        int64
	TimelineDays  int
	Proposal      string
	Status        BiddingStatus
	IsShortlisted bool
	IsAccepted    bool
	IsDeclined    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FlagsConsistent verifies the status booleans agree with Status.
func (b *Bidding) FlagsConsistent() bool {
	switch b.Status {
	case BiddingStatusAccepted:
		return b.IsAccepted && !b.IsDeclined
	case BiddingStatusShortlisted:
		return b.IsShortlisted && !b.IsAccepted && !b.IsDeclined
	case BiddingStatusRejected:
		return b.IsDeclined && !b.IsAccepted
	case BiddingStatusWithdrawn:
		return !b.IsAccepted
	default:
		return !b.IsAccepted && !b.IsDeclined
	}
}
