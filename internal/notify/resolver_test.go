package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/notify"
)

func newResolverFixture() (*notify.Resolver, *fakeProjects, *fakeUsers, *fakeBiddings) {
	agentID := "agent-1"
	projects := &fakeProjects{projects: map[string]*domain.Project{
		"p1": {ID: "p1", ClientID: "client-1", AssignedAgentID: &agentID},
		"p2": {ID: "p2", ClientID: "client-2"},
	}}
	users := &fakeUsers{
		users: map[string]*domain.User{
			"client-1": {ID: "client-1", Role: domain.RoleClient},
		},
		byRole: map[domain.Role][]*domain.User{
			domain.RoleAdmin: {
				{ID: "admin-1", Role: domain.RoleAdmin},
				{ID: "admin-2", Role: domain.RoleAdmin},
			},
		},
	}
	biddings := &fakeBiddings{shortlisted: map[string][]*domain.Bidding{
		"p1": {
			{ID: "b1", FreelancerID: "free-1"},
			{ID: "b2", FreelancerID: "free-2"},
			{ID: "b3", FreelancerID: "free-1"},
		},
	}}
	return notify.NewResolver(projects, users, biddings), projects, users, biddings
}

func TestResolveClient(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()
	ctx := context.Background()

	t.Run("from payload", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleClient}, domain.Event{
			ProjectID: "p1",
			Payload:   domain.Payload{domain.PayloadKeyClientID: "client-9"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"client-9"}, ids)
	})

	t.Run("falls back to project owner", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleClient}, domain.Event{
			ProjectID: "p1",
			Payload:   domain.Payload{},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"client-1"}, ids)
	})

	t.Run("missing project surfaces error", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleClient}, domain.Event{
			ProjectID: "missing",
			Payload:   domain.Payload{},
		})
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}

func TestResolveAgent(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()
	ctx := context.Background()

	t.Run("assigned agent", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleAgent}, domain.Event{ProjectID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"agent-1"}, ids)
	})

	t.Run("unassigned agent yields nobody", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleAgent}, domain.Event{ProjectID: "p2"})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestResolveAdminGroup(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()

	ids, err := resolver.Resolve(context.Background(), notify.Rule{Role: domain.RoleAdmin}, domain.Event{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin-1", "admin-2"}, ids)
}

func TestResolveFreelancer(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()
	ctx := context.Background()

	t.Run("explicit freelancer in payload", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleFreelancer}, domain.Event{
			ProjectID: "p1",
			Payload:   domain.Payload{domain.PayloadKeyFreelancerID: "free-9"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"free-9"}, ids)
	})

	t.Run("bidder id also works", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleFreelancer}, domain.Event{
			ProjectID: "p1",
			Payload:   domain.Payload{domain.PayloadKeyBidderID: "free-7"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"free-7"}, ids)
	})

	t.Run("shortlist fan-out deduplicates", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleFreelancer}, domain.Event{
			ProjectID: "p1",
			Payload:   domain.Payload{},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"free-1", "free-2"}, ids)
	})

	t.Run("no shortlist yields nobody", func(t *testing.T) {
		ids, err := resolver.Resolve(ctx, notify.Rule{Role: domain.RoleFreelancer}, domain.Event{
			ProjectID: "p2",
			Payload:   domain.Payload{},
		})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestResolveUnknownRole(t *testing.T) {
	resolver, _, _, _ := newResolverFixture()

	_, err := resolver.Resolve(context.Background(), notify.Rule{Role: domain.Role("ghost")}, domain.Event{})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
