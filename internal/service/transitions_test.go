package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigforge/gigforge/internal/domain"
)

func TestRuleFor(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.ProjectStatus
		to      domain.ProjectStatus
		role    domain.Role
		allowed bool
	}{
		{
			name:    "client posts draft project",
			from:    domain.ProjectStatusDraft,
			to:      domain.ProjectStatusActive,
			role:    domain.RoleClient,
			allowed: true,
		},
		{
			name:    "admin posts draft project",
			from:    domain.ProjectStatusDraft,
			to:      domain.ProjectStatusActive,
			role:    domain.RoleAdmin,
			allowed: true,
		},
		{
			name:    "freelancer cannot post draft project",
			from:    domain.ProjectStatusDraft,
			to:      domain.ProjectStatusActive,
			role:    domain.RoleFreelancer,
			allowed: false,
		},
		{
			name:    "agent opens bidding",
			from:    domain.ProjectStatusActive,
			to:      domain.ProjectStatusInBidding,
			role:    domain.RoleAgent,
			allowed: true,
		},
		{
			name:    "client cannot open bidding",
			from:    domain.ProjectStatusActive,
			to:      domain.ProjectStatusInBidding,
			role:    domain.RoleClient,
			allowed: false,
		},
		{
			name:    "admin awards bidding",
			from:    domain.ProjectStatusInBidding,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleAdmin,
			allowed: true,
		},
		{
			name:    "client cannot award bidding",
			from:    domain.ProjectStatusInBidding,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleClient,
			allowed: false,
		},
		{
			name:    "superadmin approves review",
			from:    domain.ProjectStatusPendingReview,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleSuperadmin,
			allowed: true,
		},
		{
			name:    "agent rejects review",
			from:    domain.ProjectStatusPendingReview,
			to:      domain.ProjectStatusRejected,
			role:    domain.RoleAgent,
			allowed: true,
		},
		{
			name:    "freelancer completes project",
			from:    domain.ProjectStatusInProgress,
			to:      domain.ProjectStatusCompleted,
			role:    domain.RoleFreelancer,
			allowed: true,
		},
		{
			name:    "client cannot complete project",
			from:    domain.ProjectStatusInProgress,
			to:      domain.ProjectStatusCompleted,
			role:    domain.RoleClient,
			allowed: false,
		},
		{
			name:    "client holds in-progress project",
			from:    domain.ProjectStatusInProgress,
			to:      domain.ProjectStatusHold,
			role:    domain.RoleClient,
			allowed: true,
		},
		{
			name:    "agent cannot hold project",
			from:    domain.ProjectStatusInProgress,
			to:      domain.ProjectStatusHold,
			role:    domain.RoleAgent,
			allowed: false,
		},
		{
			name:    "client cancels project in bidding",
			from:    domain.ProjectStatusInBidding,
			to:      domain.ProjectStatusCancelled,
			role:    domain.RoleClient,
			allowed: true,
		},
		{
			name:    "client resumes held project",
			from:    domain.ProjectStatusHold,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleClient,
			allowed: true,
		},
		{
			name:    "client resumes cancelled project",
			from:    domain.ProjectStatusCancelled,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleClient,
			allowed: true,
		},
		{
			name:    "admin cannot resume cancelled project",
			from:    domain.ProjectStatusCancelled,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleAdmin,
			allowed: false,
		},
		{
			name:    "no edge out of completed",
			from:    domain.ProjectStatusCompleted,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleAdmin,
			allowed: false,
		},
		{
			name:    "no edge out of rejected",
			from:    domain.ProjectStatusRejected,
			to:      domain.ProjectStatusActive,
			role:    domain.RoleSuperadmin,
			allowed: false,
		},
		{
			name:    "no skipping draft to in_progress",
			from:    domain.ProjectStatusDraft,
			to:      domain.ProjectStatusInProgress,
			role:    domain.RoleAdmin,
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ruleFor(tt.from, tt.to, tt.role)
			if tt.allowed {
				require.NotNil(t, rule)
				assert.Equal(t, tt.from, rule.From)
				assert.Equal(t, tt.to, rule.To)
			} else {
				assert.Nil(t, rule)
			}
		})
	}
}

func TestRuleFlags(t *testing.T) {
	t.Run("hold requires remark", func(t *testing.T) {
		rule := ruleFor(domain.ProjectStatusActive, domain.ProjectStatusHold, domain.RoleClient)
		require.NotNil(t, rule)
		assert.True(t, rule.NeedsRemark)
	})

	t.Run("cancel requires remark", func(t *testing.T) {
		rule := ruleFor(domain.ProjectStatusInProgress, domain.ProjectStatusCancelled, domain.RoleClient)
		require.NotNil(t, rule)
		assert.True(t, rule.NeedsRemark)
	})

	t.Run("award requires freelancer and closes bidding", func(t *testing.T) {
		rule := ruleFor(domain.ProjectStatusInBidding, domain.ProjectStatusInProgress, domain.RoleAdmin)
		require.NotNil(t, rule)
		assert.True(t, rule.NeedsFreelancerArg)
		require.NotNil(t, rule.OpenForBidding)
		assert.False(t, *rule.OpenForBidding)
	})

	t.Run("open bidding flips the flag on", func(t *testing.T) {
		rule := ruleFor(domain.ProjectStatusActive, domain.ProjectStatusInBidding, domain.RoleAgent)
		require.NotNil(t, rule)
		require.NotNil(t, rule.OpenForBidding)
		assert.True(t, *rule.OpenForBidding)
	})

	t.Run("resume requires existing freelancer", func(t *testing.T) {
		rule := ruleFor(domain.ProjectStatusHold, domain.ProjectStatusInProgress, domain.RoleClient)
		require.NotNil(t, rule)
		assert.True(t, rule.NeedsExistingFreelancer)
	})

	t.Run("completion is restricted to the assigned freelancer", func(t *testing.T) {
		rule := ruleFor(domain.ProjectStatusInProgress, domain.ProjectStatusCompleted, domain.RoleFreelancer)
		require.NotNil(t, rule)
		assert.True(t, rule.AssignedFreelancerOnly)
	})
}

func TestAllowedTargets(t *testing.T) {
	t.Run("client from in_progress", func(t *testing.T) {
		targets := AllowedTargets(domain.ProjectStatusInProgress, domain.RoleClient)
		assert.ElementsMatch(t, []domain.ProjectStatus{
			domain.ProjectStatusHold,
			domain.ProjectStatusCancelled,
		}, targets)
	})

	t.Run("admin from pending_review", func(t *testing.T) {
		targets := AllowedTargets(domain.ProjectStatusPendingReview, domain.RoleAdmin)
		assert.ElementsMatch(t, []domain.ProjectStatus{
			domain.ProjectStatusInProgress,
			domain.ProjectStatusRejected,
		}, targets)
	})

	t.Run("terminal statuses offer nothing to staff", func(t *testing.T) {
		assert.Empty(t, AllowedTargets(domain.ProjectStatusCompleted, domain.RoleAdmin))
		assert.Empty(t, AllowedTargets(domain.ProjectStatusRejected, domain.RoleAgent))
	})

	t.Run("freelancer from in_bidding", func(t *testing.T) {
		assert.Empty(t, AllowedTargets(domain.ProjectStatusInBidding, domain.RoleFreelancer))
	})
}

func TestEveryRuleHasActionAndRoles(t *testing.T) {
	for _, rule := range transitionTable {
		assert.NotEmpty(t, rule.Action, "rule %s -> %s has no action", rule.From, rule.To)
		assert.NotEmpty(t, rule.Roles, "rule %s -> %s has no roles", rule.From, rule.To)
		assert.True(t, rule.From.IsValid(), "rule has invalid from status %s", rule.From)
		assert.True(t, rule.To.IsValid(), "rule has invalid to status %s", rule.To)
		assert.False(t, rule.From.IsTerminal() && rule.From != domain.ProjectStatusCancelled,
			"rule leaves terminal status %s", rule.From)
	}
}
