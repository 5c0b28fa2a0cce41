package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/bus"
	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/repository"
)

// ProjectService coordinates project lifecycle transitions. Every
// transition commits the status change, exactly one timeline entry,
// one outbox event, and its audit record atomically; notification
// dispatch is sequenced strictly after the commit and is allowed to
// fail on its own.
type ProjectService struct {
	pool         *pgxpool.Pool
	projectRepo  *repository.ProjectRepository
	timelineRepo *repository.TimelineRepository
	outboxRepo   *repository.OutboxRepository
	userRepo     *repository.UserRepository
	audit        *AuditService
	bus          *bus.Bus
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	pool *pgxpool.Pool,
	projectRepo *repository.ProjectRepository,
	timelineRepo *repository.TimelineRepository,
	outboxRepo *repository.OutboxRepository,
	userRepo *repository.UserRepository,
	audit *AuditService,
	eventBus *bus.Bus,
) *ProjectService {
	return &ProjectService{
		pool:         pool,
		projectRepo:  projectRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		userRepo:     userRepo,
		audit:        audit,
		bus:          eventBus,
	}
}

// TransitionOption customizes a transition request.
type TransitionOption func(*transitionArgs)

type transitionArgs struct {
	freelancerID *string
}

// WithFreelancer names the freelancer an award transition assigns.
func WithFreelancer(freelancerID string) TransitionOption {
	return func(a *transitionArgs) {
		a.freelancerID = &freelancerID
	}
}

// rollback rolls the transaction back, tolerating an already-closed tx.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// CreateProject creates a project in draft on behalf of a client.
// Admins may create for any client; a client only for themselves.
func (s *ProjectService) CreateProject(
	ctx context.Context,
	actor domain.Actor,
	clientID string,
	title string,
	description string,
) (*domain.Project, error) {
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if actor.Role == domain.RoleClient && actor.ID != clientID {
		return nil, fmt.Errorf("%w: client %s cannot create projects for %s", domain.ErrPermissionDenied, actor.ID, clientID)
	}
	if actor.Role != domain.RoleClient && !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%w: role %s cannot create projects", domain.ErrPermissionDenied, actor.Role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	project := &domain.Project{
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Status:      domain.ProjectStatusDraft,
	}
	if _, err := s.projectRepo.Create(ctx, tx, project); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Type:      domain.EventProjectCreated,
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		Payload: domain.Payload{
			domain.PayloadKeyProjectID:    project.ID,
			domain.PayloadKeyProjectTitle: project.Title,
			domain.PayloadKeyClientID:     project.ClientID,
		},
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "create_project", "project", project.ID,
		nil,
		map[string]any{"status": string(project.Status), "title": project.Title},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *event)

	slog.Info("project created",
		"project_id", project.ID,
		"client_id", clientID,
		"actor_id", actor.ID,
	)
	return project, nil
}

// ApplyTransition validates and commits a status change for the actor,
// appending exactly one timeline entry and emitting one
// PROJECT_STATUS_CHANGED event. On any validation failure nothing is
// written.
func (s *ProjectService) ApplyTransition(
	ctx context.Context,
	projectID string,
	actor domain.Actor,
	target domain.ProjectStatus,
	remark string,
	opts ...TransitionOption,
) (*domain.TimelineEntry, error) {
	if !target.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	var args transitionArgs
	for _, opt := range opts {
		opt(&args)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	project, err := s.projectRepo.GetByIDForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}

	entry, event, err := s.applyLocked(ctx, tx, project, actor, target, remark, args)
	if err != nil {
		return nil, err
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, string(entry.Action), "project", project.ID,
		map[string]any{"status": string(entry.OldStatus)},
		map[string]any{"status": string(entry.NewStatus)},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *event)

	slog.Info("project status changed",
		"project_id", project.ID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
		"old_status", entry.OldStatus,
		"new_status", entry.NewStatus,
		"action", entry.Action,
	)
	return entry, nil
}

// applyLocked performs the transition against an already-locked
// project row inside the caller's transaction: rule lookup,
// precondition checks, guarded status update, timeline append, outbox
// enqueue. The caller commits.
func (s *ProjectService) applyLocked(
	ctx context.Context,
	tx pgx.Tx,
	project *domain.Project,
	actor domain.Actor,
	target domain.ProjectStatus,
	remark string,
	args transitionArgs,
) (*domain.TimelineEntry, *domain.Event, error) {
	rule := ruleFor(project.Status, target, actor.Role)
	if rule == nil {
		return nil, nil, fmt.Errorf(
			"%w: project %s is %s; role %s may move it to %v",
			domain.ErrInvalidTransition,
			project.ID, project.Status, actor.Role,
			AllowedTargets(project.Status, actor.Role),
		)
	}

	if rule.NeedsRemark && remark == "" {
		return nil, nil, fmt.Errorf("%w: transition to %s", domain.ErrMissingRemark, target)
	}
	if rule.NeedsExistingFreelancer && project.AssignedFreelancerID == nil {
		return nil, nil, fmt.Errorf("%w: cannot resume project %s", domain.ErrMissingAssignment, project.ID)
	}
	if rule.NeedsFreelancerArg && args.freelancerID == nil {
		return nil, nil, fmt.Errorf("%w: award requires a freelancer", domain.ErrMissingAssignment)
	}
	if rule.AssignedFreelancerOnly && actor.Role == domain.RoleFreelancer && !project.IsAssignedTo(actor.ID) {
		return nil, nil, fmt.Errorf("%w: freelancer %s is not assigned to project %s", domain.ErrPermissionDenied, actor.ID, project.ID)
	}
	// The owning client alone may hold, cancel, or resume.
	if actor.Role == domain.RoleClient && !project.IsOwnedBy(actor.ID) {
		return nil, nil, fmt.Errorf("%w: user %s does not own project %s", domain.ErrNotProjectOwner, actor.ID, project.ID)
	}

	patch := repository.StatusPatch{
		IsOpenForBidding: rule.OpenForBidding,
	}
	if rule.NeedsRemark {
		patch.StatusRemark = &remark
	}

	var freelancerName string
	if rule.NeedsFreelancerArg {
		freelancer, err := s.userRepo.GetByID(ctx, *args.freelancerID)
		if err != nil {
			return nil, nil, err
		}
		if freelancer.Role != domain.RoleFreelancer || !freelancer.IsActive {
			return nil, nil, fmt.Errorf("%w: user %s is not an active freelancer", domain.ErrPermissionDenied, freelancer.ID)
		}
		freelancerName = freelancer.Name
		patch.AssignedFreelancerID = args.freelancerID
		patch.SetFreelancer = true
		if remark == "" {
			remark = fmt.Sprintf("Awarded to %s", freelancerName)
		}
	}

	if err := s.projectRepo.UpdateStatus(ctx, tx, project.ID, project.Status, target, patch); err != nil {
		return nil, nil, err
	}

	entry := &domain.TimelineEntry{
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		ActorRole: actor.Role,
		OldStatus: project.Status,
		NewStatus: target,
		Action:    rule.Action,
		Remark:    remark,
	}
	if err := s.timelineRepo.Create(ctx, tx, entry); err != nil {
		return nil, nil, fmt.Errorf("create timeline entry: %w", err)
	}

	payload := domain.Payload{
		domain.PayloadKeyProjectID:    project.ID,
		domain.PayloadKeyProjectTitle: project.Title,
		domain.PayloadKeyClientID:     project.ClientID,
		domain.PayloadKeyOldStatus:    string(project.Status),
		domain.PayloadKeyNewStatus:    string(target),
		domain.PayloadKeyRemark:       remark,
	}
	if args.freelancerID != nil {
		payload[domain.PayloadKeyFreelancerID] = *args.freelancerID
		payload[domain.PayloadKeyFreelancerName] = freelancerName
	}

	event := &domain.Event{
		Type:      domain.EventProjectStatusChanged,
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		Payload:   payload,
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		return nil, nil, err
	}

	return entry, event, nil
}
