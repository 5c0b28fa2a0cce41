package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiddingFlagsConsistent(t *testing.T) {
	tests := []struct {
		name    string
		bidding Bidding
		want    bool
	}{
		{"fresh pending", Bidding{Status: BiddingStatusPending}, true},
		{"pending with accepted flag", Bidding{Status: BiddingStatusPending, IsAccepted: true}, false},
		{"shortlisted", Bidding{Status: BiddingStatusShortlisted, IsShortlisted: true}, true},
		{"shortlisted without flag", Bidding{Status: BiddingStatusShortlisted}, false},
		{"accepted", Bidding{Status: BiddingStatusAccepted, IsAccepted: true, IsShortlisted: true}, true},
		{"accepted and declined", Bidding{Status: BiddingStatusAccepted, IsAccepted: true, IsDeclined: true}, false},
		{"rejected", Bidding{Status: BiddingStatusRejected, IsDeclined: true}, true},
		{"rejected without flag", Bidding{Status: BiddingStatusRejected}, false},
		{"withdrawn", Bidding{Status: BiddingStatusWithdrawn}, true},
		{"withdrawn but accepted", Bidding{Status: BiddingStatusWithdrawn, IsAccepted: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bidding.FlagsConsistent())
		})
	}
}

func TestBiddingStatusIsDecided(t *testing.T) {
	assert.False(t, BiddingStatusPending.IsDecided())
	assert.False(t, BiddingStatusShortlisted.IsDecided())
	assert.True(t, BiddingStatusAccepted.IsDecided())
	assert.True(t, BiddingStatusRejected.IsDecided())
	assert.True(t, BiddingStatusWithdrawn.IsDecided())
}
