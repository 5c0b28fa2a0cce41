package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusCanAdvanceTo(t *testing.T) {
	tests := []struct {
		name string
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{"request payment", PaymentStatusNotRequested, PaymentStatusRequested, true},
		{"start processing", PaymentStatusRequested, PaymentStatusProcessing, true},
		{"complete payment", PaymentStatusProcessing, PaymentStatusPaid, true},
		{"cannot skip to processing", PaymentStatusNotRequested, PaymentStatusProcessing, false},
		{"cannot skip to paid", PaymentStatusRequested, PaymentStatusPaid, false},
		{"cannot move backwards", PaymentStatusProcessing, PaymentStatusRequested, false},
		{"cannot leave paid", PaymentStatusPaid, PaymentStatusProcessing, false},
		{"fail from processing", PaymentStatusProcessing, PaymentStatusFailed, true},
		{"cancel from requested", PaymentStatusRequested, PaymentStatusCancelled, true},
		{"cannot fail a paid milestone", PaymentStatusPaid, PaymentStatusFailed, false},
		{"reset after failure", PaymentStatusFailed, PaymentStatusNotRequested, true},
		{"reset after cancellation", PaymentStatusCancelled, PaymentStatusNotRequested, true},
		{"failed cannot jump to paid", PaymentStatusFailed, PaymentStatusPaid, false},
		{"self transition is illegal", PaymentStatusRequested, PaymentStatusRequested, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestMilestoneAmountLocked(t *testing.T) {
	m := &Milestone{Amount: 5000}
	assert.False(t, m.AmountLocked())

	m.IsPaid = true
	assert.True(t, m.AmountLocked())
}
