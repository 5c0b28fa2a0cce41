package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/notify"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		payload  domain.Payload
		want     string
	}{
		{
			name:     "single placeholder",
			template: "Project {projectTitle} was created.",
			payload:  domain.Payload{"projectTitle": "Logo redesign"},
			want:     "Project Logo redesign was created.",
		},
		{
			name:     "multiple placeholders",
			template: "{projectTitle} moved from {oldStatus} to {newStatus}.",
			payload: domain.Payload{
				"projectTitle": "Logo redesign",
				"oldStatus":    "active",
				"newStatus":    "in_bidding",
			},
			want: "Logo redesign moved from active to in_bidding.",
		},
		{
			name:     "missing key stays literal",
			template: "Hello {freelancerName}, you won.",
			payload:  domain.Payload{"projectTitle": "x"},
			want:     "Hello {freelancerName}, you won.",
		},
		{
			name:     "empty string value stays literal",
			template: "Hello {freelancerName}.",
			payload:  domain.Payload{"freelancerName": ""},
			want:     "Hello {freelancerName}.",
		},
		{
			name:     "nil value stays literal",
			template: "Amount: {amount}",
			payload:  domain.Payload{"amount": nil},
			want:     "Amount: {amount}",
		},
		{
			name:     "numeric value formats",
			template: "Payment of {amount} requested.",
			payload:  domain.Payload{"amount": int64(5000)},
			want:     "Payment of 5000 requested.",
		},
		{
			name:     "no placeholders",
			template: "Plain text.",
			payload:  domain.Payload{"projectTitle": "ignored"},
			want:     "Plain text.",
		},
		{
			name:     "repeated placeholder",
			template: "{projectTitle} and {projectTitle} again",
			payload:  domain.Payload{"projectTitle": "X"},
			want:     "X and X again",
		},
		{
			name:     "nil payload",
			template: "Status: {newStatus}",
			payload:  nil,
			want:     "Status: {newStatus}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notify.Render(tt.template, tt.payload))
		})
	}
}
