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

// BiddingService coordinates bid postings and freelancer proposals,
// including the acceptance invariant: at most one accepted bidding per
// project, enforced transactionally and by a unique partial index.
type BiddingService struct {
	pool        *pgxpool.Pool
	biddingRepo *repository.BiddingRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	outboxRepo  *repository.OutboxRepository
	projectSvc  *ProjectService
	audit       *AuditService
	bus         *bus.Bus
}

// NewBiddingService creates a new BiddingService.
func NewBiddingService(
	pool *pgxpool.Pool,
	biddingRepo *repository.BiddingRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	outboxRepo *repository.OutboxRepository,
	projectSvc *ProjectService,
	audit *AuditService,
	eventBus *bus.Bus,
) *BiddingService {
	return &BiddingService{
		pool:        pool,
		biddingRepo: biddingRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		projectSvc:  projectSvc,
		audit:       audit,
		bus:         eventBus,
	}
}

// PlaceBidding creates a freelancer proposal against a posted bid.
func (s *BiddingService) PlaceBidding(
	ctx context.Context,
	bidID string,
	actor domain.Actor,
	amount int64,
	timelineDays int,
	proposal string,
) (*domain.Bidding, error) {
	if actor.Role != domain.RoleFreelancer {
		return nil, fmt.Errorf("%w: only freelancers place biddings", domain.ErrPermissionDenied)
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	bid, err := s.biddingRepo.GetBidByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOpenForBidding || project.Status != domain.ProjectStatusInBidding {
		return nil, fmt.Errorf("%w: project %s", domain.ErrBiddingClosed, project.ID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	bidding := &domain.Bidding{
		BidID:        bid.ID,
		ProjectID:    bid.ProjectID,
		FreelancerID: actor.ID,
		Amount:       amount,
		TimelineDays: timelineDays,
		Proposal:     proposal,
		Status:       domain.BiddingStatusPending,
	}
	if _, err := s.biddingRepo.Create(ctx, tx, bidding); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Type:      domain.EventBidPlaced,
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		Payload: domain.Payload{
			domain.PayloadKeyProjectID:    project.ID,
			domain.PayloadKeyProjectTitle: project.Title,
			domain.PayloadKeyClientID:     project.ClientID,
			domain.PayloadKeyBidderID:     actor.ID,
		},
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.audit.RecordActivity(ctx, actor.ID, "place_bidding", "bidding", bidding.ID,
		fmt.Sprintf("Bidding placed on project %s", project.Title))
	s.bus.Publish(ctx, *event)

	slog.Info("bidding placed",
		"bidding_id", bidding.ID,
		"project_id", project.ID,
		"freelancer_id", actor.ID,
	)
	return bidding, nil
}

// Shortlist moves a pending bidding onto the shortlist.
func (s *BiddingService) Shortlist(ctx context.Context, biddingID string, actor domain.Actor) error {
	if !actor.Role.IsStaff() {
		return fmt.Errorf("%w: only staff shortlist biddings", domain.ErrPermissionDenied)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	bidding, err := s.biddingRepo.GetByIDForUpdate(ctx, tx, biddingID)
	if err != nil {
		return err
	}
	if bidding.Status != domain.BiddingStatusPending {
		return fmt.Errorf("%w: bidding %s is %s", domain.ErrBiddingDecided, bidding.ID, bidding.Status)
	}

	if err := s.biddingRepo.UpdateStatus(ctx, tx, biddingID,
		domain.BiddingStatusPending, domain.BiddingStatusShortlisted); err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, bidding.ProjectID)
	if err != nil {
		return err
	}

	event := &domain.Event{
		Type:      domain.EventBidShortlisted,
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		Payload: domain.Payload{
			domain.PayloadKeyProjectID:    project.ID,
			domain.PayloadKeyProjectTitle: project.Title,
			domain.PayloadKeyBidderID:     bidding.FreelancerID,
		},
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		return err
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "shortlist_bidding", "bidding", bidding.ID,
		map[string]any{"status": string(domain.BiddingStatusPending)},
		map[string]any{"status": string(domain.BiddingStatusShortlisted)},
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *event)

	slog.Info("bidding shortlisted", "bidding_id", biddingID, "actor_id", actor.ID)
	return nil
}

// Withdraw marks the freelancer's own bidding withdrawn. Biddings are
// never deleted.
func (s *BiddingService) Withdraw(ctx context.Context, biddingID string, actor domain.Actor) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	bidding, err := s.biddingRepo.GetByIDForUpdate(ctx, tx, biddingID)
	if err != nil {
		return err
	}
	if bidding.FreelancerID != actor.ID {
		return fmt.Errorf("%w: bidding %s belongs to another freelancer", domain.ErrPermissionDenied, biddingID)
	}
	if bidding.Status.IsDecided() {
		return fmt.Errorf("%w: bidding %s is %s", domain.ErrBiddingDecided, biddingID, bidding.Status)
	}

	if err := s.biddingRepo.UpdateStatus(ctx, tx, biddingID,
		bidding.Status, domain.BiddingStatusWithdrawn); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.audit.RecordActivity(ctx, actor.ID, "withdraw_bidding", "bidding", biddingID, "Bidding withdrawn")

	slog.Info("bidding withdrawn", "bidding_id", biddingID, "freelancer_id", actor.ID)
	return nil
}

// AcceptBid accepts a bidding and awards the project to its
// freelancer in one transaction. The unique partial index on accepted
// biddings closes the race between concurrent acceptance attempts:
// exactly one caller wins, the rest get ErrBidAlreadyAccepted.
func (s *BiddingService) AcceptBid(ctx context.Context, biddingID string, actor domain.Actor) (*domain.Bidding, error) {
	if !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%w: only staff accept biddings", domain.ErrPermissionDenied)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	bidding, err := s.biddingRepo.GetByIDForUpdate(ctx, tx, biddingID)
	if err != nil {
		return nil, err
	}
	if bidding.Status.IsDecided() {
		return nil, fmt.Errorf("%w: bidding %s is %s", domain.ErrBiddingDecided, biddingID, bidding.Status)
	}

	project, err := s.projectRepo.GetByIDForUpdate(ctx, tx, bidding.ProjectID)
	if err != nil {
		return nil, err
	}

	// Friendly pre-check; the index remains the authority under races.
	siblings, err := s.biddingRepo.ListByProject(ctx, bidding.ProjectID)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.IsAccepted {
			return nil, fmt.Errorf("%w: bidding %s", domain.ErrBidAlreadyAccepted, sib.ID)
		}
	}

	if err := s.biddingRepo.Accept(ctx, tx, biddingID); err != nil {
		return nil, err
	}
	rejectedIDs, err := s.biddingRepo.RejectSiblings(ctx, tx, bidding.ProjectID, biddingID)
	if err != nil {
		return nil, err
	}

	// Award the project to the freelancer as part of the same commit.
	args := transitionArgs{freelancerID: &bidding.FreelancerID}
	_, statusEvent, err := s.projectSvc.applyLocked(ctx, tx, project, actor,
		domain.ProjectStatusInProgress, "", args)
	if err != nil {
		return nil, err
	}

	freelancer, err := s.userRepo.GetByID(ctx, bidding.FreelancerID)
	if err != nil {
		return nil, err
	}

	acceptEvent := &domain.Event{
		Type:      domain.EventBidAccepted,
		ProjectID: project.ID,
		ActorID:   &actor.ID,
		Payload: domain.Payload{
			domain.PayloadKeyProjectID:      project.ID,
			domain.PayloadKeyProjectTitle:   project.Title,
			domain.PayloadKeyClientID:       project.ClientID,
			domain.PayloadKeyFreelancerID:   bidding.FreelancerID,
			domain.PayloadKeyFreelancerName: freelancer.Name,
		},
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, acceptEvent); err != nil {
		return nil, err
	}

	// One rejection event per losing bidder. The shortlist flags are
	// already cleared by now, so each event names its bidder explicitly.
	rejectedEvents := make([]*domain.Event, 0, len(rejectedIDs))
	seen := make(map[string]struct{}, len(rejectedIDs))
	for _, freelancerID := range rejectedIDs {
		if _, ok := seen[freelancerID]; ok {
			continue
		}
		seen[freelancerID] = struct{}{}
		ev := &domain.Event{
			Type:      domain.EventBidRejected,
			ProjectID: project.ID,
			ActorID:   &actor.ID,
			Payload: domain.Payload{
				domain.PayloadKeyProjectID:    project.ID,
				domain.PayloadKeyProjectTitle: project.Title,
				domain.PayloadKeyBidderID:     freelancerID,
			},
		}
		if err := s.outboxRepo.Enqueue(ctx, tx, ev); err != nil {
			return nil, err
		}
		rejectedEvents = append(rejectedEvents, ev)
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "accept_bidding", "bidding", biddingID,
		map[string]any{"status": string(bidding.Status)},
		map[string]any{"status": string(domain.BiddingStatusAccepted), "freelancerId": bidding.FreelancerID},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *statusEvent)
	s.bus.Publish(ctx, *acceptEvent)
	for _, ev := range rejectedEvents {
		s.bus.Publish(ctx, *ev)
	}

	slog.Info("bidding accepted",
		"bidding_id", biddingID,
		"project_id", project.ID,
		"freelancer_id", bidding.FreelancerID,
		"actor_id", actor.ID,
	)

	accepted, err := s.biddingRepo.GetByID(ctx, biddingID)
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// PostBid creates an admin-authored bid posting and opens the project
// for bidding.
func (s *BiddingService) PostBid(
	ctx context.Context,
	projectID string,
	actor domain.Actor,
	description string,
) (*domain.Bid, error) {
	if !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%w: only staff post bids", domain.ErrPermissionDenied)
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

	_, statusEvent, err := s.projectSvc.applyLocked(ctx, tx, project, actor,
		domain.ProjectStatusInBidding, "", transitionArgs{})
	if err != nil {
		return nil, err
	}

	bid := &domain.Bid{
		ProjectID:   projectID,
		PostedBy:    actor.ID,
		Description: description,
	}
	if _, err := s.biddingRepo.CreateBid(ctx, tx, bid); err != nil {
		return nil, err
	}

	if err := s.audit.RecordInTx(ctx, tx, actor, "post_bid", "bid", bid.ID,
		nil, map[string]any{"projectId": projectID}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.bus.Publish(ctx, *statusEvent)

	slog.Info("bid posted", "bid_id", bid.ID, "project_id", projectID, "actor_id", actor.ID)
	return bid, nil
}
