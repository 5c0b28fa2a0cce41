package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStatusIsValid(t *testing.T) {
	for _, s := range []ProjectStatus{
		ProjectStatusDraft, ProjectStatusActive, ProjectStatusPendingReview,
		ProjectStatusInBidding, ProjectStatusAssigned, ProjectStatusInProgress,
		ProjectStatusHold, ProjectStatusCompleted, ProjectStatusCancelled,
		ProjectStatusRejected,
	} {
		assert.True(t, s.IsValid(), "status %s", s)
	}
	assert.False(t, ProjectStatus("open").IsValid())
	assert.False(t, ProjectStatus("").IsValid())
}

func TestProjectStatusRequiresRemark(t *testing.T) {
	assert.True(t, ProjectStatusHold.RequiresRemark())
	assert.True(t, ProjectStatusCancelled.RequiresRemark())
	assert.False(t, ProjectStatusActive.RequiresRemark())
	assert.False(t, ProjectStatusCompleted.RequiresRemark())
}

func TestProjectOwnershipAndAssignment(t *testing.T) {
	freelancerID := "free-1"
	p := &Project{ClientID: "client-1", AssignedFreelancerID: &freelancerID}

	assert.True(t, p.IsOwnedBy("client-1"))
	assert.False(t, p.IsOwnedBy("client-2"))
	assert.True(t, p.IsAssignedTo("free-1"))
	assert.False(t, p.IsAssignedTo("free-2"))

	unassigned := &Project{ClientID: "client-1"}
	assert.False(t, unassigned.IsAssignedTo("free-1"))
}
