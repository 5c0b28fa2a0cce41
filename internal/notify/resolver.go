package notify

import (
	"context"
	"fmt"

	"github.com/gigforge/gigforge/internal/domain"
)

// Resolver computes the concrete recipient user IDs satisfying a
// routing rule's role scope for a given event.
type Resolver struct {
	projects ProjectSource
	users    UserDirectory
	biddings BiddingSource
}

// NewResolver creates a new Resolver.
func NewResolver(projects ProjectSource, users UserDirectory, biddings BiddingSource) *Resolver {
	return &Resolver{
		projects: projects,
		users:    users,
		biddings: biddings,
	}
}

// Resolve returns the deduplicated recipient set for one rule. A scope
// that matches nobody (an unassigned agent, an empty role group) yields
// zero recipients, not an error.
func (r *Resolver) Resolve(ctx context.Context, rule Rule, event domain.Event) ([]string, error) {
	var ids []string

	switch rule.Role {
	case domain.RoleClient:
		id := event.Payload.String(domain.PayloadKeyClientID)
		if id == "" {
			project, err := r.projects.GetProject(ctx, event.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("resolve owning client: %w", err)
			}
			id = project.ClientID
		}
		if id != "" {
			ids = append(ids, id)
		}

	case domain.RoleAgent:
		project, err := r.projects.GetProject(ctx, event.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("resolve assigned agent: %w", err)
		}
		if project.AssignedAgentID != nil {
			ids = append(ids, *project.AssignedAgentID)
		}

	case domain.RoleAdmin, domain.RoleSuperadmin:
		users, err := r.users.ListActiveByRole(ctx, rule.Role)
		if err != nil {
			return nil, fmt.Errorf("resolve %s group: %w", rule.Role, err)
		}
		for _, u := range users {
			ids = append(ids, u.ID)
		}

	case domain.RoleFreelancer:
		id := event.Payload.String(domain.PayloadKeyFreelancerID)
		if id == "" {
			id = event.Payload.String(domain.PayloadKeyBidderID)
		}
		if id != "" {
			ids = append(ids, id)
			break
		}
		// No explicit freelancer in the payload: shortlist-class
		// events fan out to the currently shortlisted bidders.
		biddings, err := r.biddings.ListShortlisted(ctx, event.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("resolve shortlisted bidders: %w", err)
		}
		for _, b := range biddings {
			ids = append(ids, b.FreelancerID)
		}

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRole, rule.Role)
	}

	return dedupe(ids), nil
}

// dedupe removes repeated IDs while preserving order. A user never
// receives two notifications from the same rule.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
