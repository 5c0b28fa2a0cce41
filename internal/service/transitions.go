package service

import (
	"github.com/gigforge/gigforge/internal/domain"
)

// transitionRule is one legal (from, to) edge of the project lifecycle
// state machine, gated by actor role.
type transitionRule struct {
	From  domain.ProjectStatus
	To    domain.ProjectStatus
	Roles []domain.Role
	// Action is the machine-readable verb recorded on the timeline.
	Action domain.TimelineAction
	// NeedsRemark requires a non-empty remark from the actor.
	NeedsRemark bool
	// NeedsExistingFreelancer requires the project to already have an
	// assigned freelancer (resume).
	NeedsExistingFreelancer bool
	// NeedsFreelancerArg requires the caller to name a freelancer
	// (award).
	NeedsFreelancerArg bool
	// AssignedFreelancerOnly restricts the freelancer role to the
	// project's assigned freelancer.
	AssignedFreelancerOnly bool
	// OpenForBidding, when non-nil, flips the project's bidding flag.
	OpenForBidding *bool
}

var (
	staffRoles = []domain.Role{domain.RoleAgent, domain.RoleAdmin, domain.RoleSuperadmin}

	boolTrue  = true
	boolFalse = false
)

// transitionTable is the full role-gated lifecycle. Built once; every
// ApplyTransition call resolves against it.
var transitionTable = buildTransitionTable()

func buildTransitionTable() []transitionRule {
	rules := []transitionRule{
		// Client posts a draft project.
		{
			From:   domain.ProjectStatusDraft,
			To:     domain.ProjectStatusActive,
			Roles:  []domain.Role{domain.RoleClient, domain.RoleAdmin},
			Action: domain.ActionPostProject,
		},
		// Staff opens bidding on an active project.
		{
			From:           domain.ProjectStatusActive,
			To:             domain.ProjectStatusInBidding,
			Roles:          staffRoles,
			Action:         domain.ActionCreateBidding,
			OpenForBidding: &boolTrue,
		},
		// Staff awards the bidding, assigning the freelancer.
		{
			From:               domain.ProjectStatusInBidding,
			To:                 domain.ProjectStatusInProgress,
			Roles:              staffRoles,
			Action:             domain.ActionAwardBidding,
			NeedsFreelancerArg: true,
			OpenForBidding:     &boolFalse,
		},
		// Staff review verdicts.
		{
			From:   domain.ProjectStatusPendingReview,
			To:     domain.ProjectStatusInProgress,
			Roles:  staffRoles,
			Action: domain.ActionApproveProject,
		},
		{
			From:   domain.ProjectStatusPendingReview,
			To:     domain.ProjectStatusRejected,
			Roles:  staffRoles,
			Action: domain.ActionRejectProject,
		},
		// Completion: staff, or the assigned freelancer.
		{
			From:                   domain.ProjectStatusInProgress,
			To:                     domain.ProjectStatusCompleted,
			Roles:                  append([]domain.Role{domain.RoleFreelancer}, staffRoles...),
			Action:                 domain.ActionCompleteProject,
			AssignedFreelancerOnly: true,
		},
		// Client resumes a held or cancelled project.
		{
			From:                    domain.ProjectStatusHold,
			To:                      domain.ProjectStatusInProgress,
			Roles:                   []domain.Role{domain.RoleClient},
			Action:                  domain.ActionResumeProject,
			NeedsExistingFreelancer: true,
		},
		{
			From:                    domain.ProjectStatusCancelled,
			To:                      domain.ProjectStatusInProgress,
			Roles:                   []domain.Role{domain.RoleClient},
			Action:                  domain.ActionResumeProject,
			NeedsExistingFreelancer: true,
		},
	}

	// Client hold/cancel from every working status, remark required.
	for _, from := range []domain.ProjectStatus{
		domain.ProjectStatusActive,
		domain.ProjectStatusInBidding,
		domain.ProjectStatusAssigned,
		domain.ProjectStatusInProgress,
	} {
		rules = append(rules,
			transitionRule{
				From:        from,
				To:          domain.ProjectStatusHold,
				Roles:       []domain.Role{domain.RoleClient},
				Action:      domain.ActionHoldProject,
				NeedsRemark: true,
			},
			transitionRule{
				From:        from,
				To:          domain.ProjectStatusCancelled,
				Roles:       []domain.Role{domain.RoleClient},
				Action:      domain.ActionCancelProject,
				NeedsRemark: true,
			},
		)
	}

	return rules
}

// ruleFor resolves the transition rule for (from, to, role). A nil
// result means the transition is illegal for that actor.
func ruleFor(from, to domain.ProjectStatus, role domain.Role) *transitionRule {
	for i := range transitionTable {
		r := &transitionTable[i]
		if r.From != from || r.To != to {
			continue
		}
		for _, allowed := range r.Roles {
			if allowed == role {
				return r
			}
		}
	}
	return nil
}

// AllowedTargets lists the statuses the given role may move a project
// into from the current status. Used to explain rejections.
func AllowedTargets(from domain.ProjectStatus, role domain.Role) []domain.ProjectStatus {
	var targets []domain.ProjectStatus
	for i := range transitionTable {
		r := &transitionTable[i]
		if r.From != from {
			continue
		}
		for _, allowed := range r.Roles {
			if allowed == role {
				targets = append(targets, r.To)
				break
			}
		}
	}
	return targets
}
