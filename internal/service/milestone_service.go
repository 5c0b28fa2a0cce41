package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/bus"
	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/repository"
)

// MilestoneService coordinates milestone work status and the
// monotonic payment walk.
type MilestoneService struct {
	pool          *pgxpool.Pool
	milestoneRepo *repository.MilestoneRepository
	projectRepo   *repository.ProjectRepository
	outboxRepo    *repository.OutboxRepository
	audit         *AuditService
	bus           *bus.Bus
}

// NewMilestoneService creates a new MilestoneService.
func NewMilestoneService(
	pool *pgxpool.Pool,
	milestoneRepo *repository.MilestoneRepository,
	projectRepo *repository.ProjectRepository,
	outboxRepo *repository.OutboxRepository,
	audit *AuditService,
	eventBus *bus.Bus,
) *MilestoneService {
	return &MilestoneService{
		pool:          pool,
		milestoneRepo: milestoneRepo,
		projectRepo:   projectRepo,
		outboxRepo:    outboxRepo,
		audit:         audit,
		bus:           eventBus,
	}
}

// canManageMilestones gates milestone mutation to the owning client,
// the assigned freelancer, or staff.
func canManageMilestones(project *domain.Project, actor domain.Actor) error {
	if actor.Role.IsStaff() {
		return nil
	}
	if actor.Role == domain.RoleClient && project.IsOwnedBy(actor.ID) {
		return nil
	}
	if actor.Role == domain.RoleFreelancer && project.IsAssignedTo(actor.ID) {
		return nil
	}
	return fmt.Errorf("%w: user %s cannot manage milestones of project %s", domain.ErrPermissionDenied, actor.ID, project.ID)
}

// CreateMilestone adds a milestone to an in-progress project.
func (s *MilestoneService) CreateMilestone(
	ctx context.Context,
	projectID string,
	actor domain.Actor,
	title string,
	amount int64,
) (*domain.Milestone, error) {
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := canManageMilestones(project, actor); err != nil {
		return nil, err
	}
	if project.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: project %s is %s", domain.ErrInvalidTransition, projectID, project.Status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	milestone := &domain.Milestone{
		ProjectID: projectID,
		Title:     title,
		Amount:    amount,
	}
	if _, err := s.milestoneRepo.Create(ctx, tx, milestone); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Type:      domain.EventMilestoneCreated,
		ProjectID: projectID,
		ActorID:   &actor.ID,
		Payload: domain.Payload{
			domain.PayloadKeyProjectID:      projectID,
			domain.PayloadKeyProjectTitle:   project.Title,
			domain.PayloadKeyClientID:       project.ClientID,
			domain.PayloadKeyMilestoneTitle: milestone.Title,
			domain.PayloadKeyAmount:         milestone.Amount,
		},
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "create_milestone", "milestone", milestone.ID,
		nil, map[string]any{"title": title, "amount": amount}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *event)

	slog.Info("milestone created",
		"milestone_id", milestone.ID,
		"project_id", projectID,
		"actor_id", actor.ID,
	)
	return milestone, nil
}

// CompleteMilestone marks an active milestone completed.
func (s *MilestoneService) CompleteMilestone(ctx context.Context, milestoneID string, actor domain.Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	milestone, err := s.milestoneRepo.GetByIDForUpdate(ctx, tx, milestoneID)
	if err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, milestone.ProjectID)
	if err != nil {
		return err
	}
	if err := canManageMilestones(project, actor); err != nil {
		return err
	}

	if err := s.milestoneRepo.UpdateStatus(ctx, tx, milestoneID,
		domain.MilestoneStatusActive, domain.MilestoneStatusCompleted); err != nil {
		return err
	}

	event := &domain.Event{
		Type:      domain.EventMilestoneCompleted,
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		Payload: domain.Payload{
			domain.PayloadKeyProjectID:      project.ID,
			domain.PayloadKeyProjectTitle:   project.Title,
			domain.PayloadKeyClientID:       project.ClientID,
			domain.PayloadKeyMilestoneTitle: milestone.Title,
		},
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		return err
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "complete_milestone", "milestone", milestoneID,
		map[string]any{"status": string(domain.MilestoneStatusActive)},
		map[string]any{"status": string(domain.MilestoneStatusCompleted)},
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *event)

	slog.Info("milestone completed", "milestone_id", milestoneID, "actor_id", actor.ID)
	return nil
}

// AdvancePayment moves a milestone's payment status one step forward,
// or to an explicit failed/cancelled exit. The amount freezes once the
// milestone is paid.
func (s *MilestoneService) AdvancePayment(
	ctx context.Context,
	milestoneID string,
	actor domain.Actor,
	target domain.PaymentStatus,
) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	milestone, err := s.milestoneRepo.GetByIDForUpdate(ctx, tx, milestoneID)
	if err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, milestone.ProjectID)
	if err != nil {
		return err
	}
	if err := canManageMilestones(project, actor); err != nil {
		return err
	}

	// Requesting payment is the freelancer's move; later steps are staff-only.
	if target != domain.PaymentStatusRequested && !actor.Role.IsStaff() {
		return fmt.Errorf("%w: only staff advance payments past the request", domain.ErrPermissionDenied)
	}

	if !milestone.PaymentStatus.CanAdvanceTo(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPaymentAdvance, milestone.PaymentStatus, target)
	}

	if err := s.milestoneRepo.AdvancePayment(ctx, tx, milestoneID, milestone.PaymentStatus, target); err != nil {
		return err
	}

	var event *domain.Event
	switch target {
	case domain.PaymentStatusRequested:
		event = &domain.Event{Type: domain.EventPaymentRequested}
	case domain.PaymentStatusPaid:
		event = &domain.Event{Type: domain.EventPaymentCompleted}
	}
	if event != nil {
		event.ProjectID = project.ID
		event.ActorID = &actor.ID
		event.Payload = domain.Payload{
			domain.PayloadKeyProjectID:      project.ID,
			domain.PayloadKeyProjectTitle:   project.Title,
			domain.PayloadKeyClientID:       project.ClientID,
			domain.PayloadKeyMilestoneTitle: milestone.Title,
			domain.PayloadKeyAmount:         milestone.Amount,
		}
		if project.AssignedFreelancerID != nil {
			event.Payload[domain.PayloadKeyFreelancerID] = *project.AssignedFreelancerID
		}
		if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "advance_payment", "milestone", milestoneID,
		map[string]any{"paymentStatus": string(milestone.PaymentStatus)},
		map[string]any{"paymentStatus": string(target)},
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if event != nil {
		s.bus.Publish(ctx, *event)
	}

	slog.Info("milestone payment advanced",
		"milestone_id", milestoneID,
		"old_payment_status", milestone.PaymentStatus,
		"new_payment_status", target,
		"actor_id", actor.ID,
	)
	return nil
}
