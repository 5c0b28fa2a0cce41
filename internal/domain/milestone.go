package domain

import "time"

// MilestoneStatus represents the work status of a milestone.
type MilestoneStatus string

const (
	MilestoneStatusActive    MilestoneStatus = "active"
	MilestoneStatusCompleted MilestoneStatus = "completed"
	MilestoneStatusCancelled MilestoneStatus = "cancelled"
)

// PaymentStatus represents the payment sub-state of a milestone.
type PaymentStatus string

const (
	PaymentStatusNotRequested PaymentStatus = "not_requested"
	PaymentStatusRequested    PaymentStatus = "payment_requested"
	PaymentStatusProcessing   PaymentStatus = "processing"
	PaymentStatusPaid         PaymentStatus = "paid"
	PaymentStatusFailed       PaymentStatus = "failed"
	PaymentStatusCancelled    PaymentStatus = "cancelled"
)

// paymentRank orders the forward-only payment states. Failed and
// cancelled sit outside the rank and are reachable as explicit exits.
var paymentRank = map[PaymentStatus]int{
	PaymentStatusNotRequested: 0,
	PaymentStatusRequested:    1,
	PaymentStatusProcessing:   2,
	PaymentStatusPaid:         3,
}

// CanAdvanceTo reports whether the payment status may move to next.
// Forward movement is monotonic; failed and cancelled are allowed from
// any non-paid state and reset back to not_requested only explicitly.
func (s PaymentStatus) CanAdvanceTo(next PaymentStatus) bool {
	if next == PaymentStatusFailed || next == PaymentStatusCancelled {
		return s != PaymentStatusPaid
	}
	if s == PaymentStatusFailed || s == PaymentStatusCancelled {
		return next == PaymentStatusNotRequested
	}
	cur, ok := paymentRank[s]
	if !ok {
		return false
	}
	nxt, ok := paymentRank[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// Milestone is a payable unit of work owned by a single project.
type Milestone struct {
	ID            string
	ProjectID     string
	Title         string
	Amount        int64 // minor currency units
	Status        MilestoneStatus
	PaymentStatus PaymentStatus
	IsPaid        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AmountLocked returns true once the amount may no longer change.
func (m *Milestone) AmountLocked() bool {
	return m.IsPaid
}
