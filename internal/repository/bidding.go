package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// biddingColumns is the shared list of columns for bidding queries.
var biddingColumns = []string{
	"id", "bid_id", "project_id", "freelancer_id", "amount", "timeline_days",
	"proposal", "status", "is_shortlisted", "is_accepted", "is_declined",
	"created_at", "updated_at",
}

// BiddingRepository handles database operations for bids and biddings.
type BiddingRepository struct {
	pool *pgxpool.Pool
}

// NewBiddingRepository creates a new BiddingRepository.
func NewBiddingRepository(pool *pgxpool.Pool) *BiddingRepository {
	return &BiddingRepository{pool: pool}
}

func scanBidding(row pgx.Row) (*domain.Bidding, error) {
	var b domain.Bidding
	err := row.Scan(
		&b.ID,
		&b.BidID,
		&b.ProjectID,
		&b.FreelancerID,
		&b.Amount,
		&b.TimelineDays,
		&b.Proposal,
		&b.Status,
		&b.IsShortlisted,
		&b.IsAccepted,
		&b.IsDeclined,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBiddingNotFound
		}
		return nil, fmt.Errorf("scan bidding: %w", err)
	}
	return &b, nil
}

func scanBiddings(rows pgx.Rows) ([]*domain.Bidding, error) {
	defer rows.Close()

	var biddings []*domain.Bidding
	for rows.Next() {
		b, err := scanBidding(rows)
		if err != nil {
			return nil, err
		}
		biddings = append(biddings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return biddings, nil
}

// CreateBid creates a new admin-authored bid posting.
func (r *BiddingRepository) CreateBid(ctx context.Context, tx pgx.Tx, bid *domain.Bid) (*domain.Bid, error) {
	query, args, err := psql.
		Insert("bids").
		Columns("project_id", "posted_by", "description", "deadline").
		Values(bid.ProjectID, bid.PostedBy, bid.Description, bid.Deadline).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build CreateBid query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create bid: %w", err)
	}
	return bid, nil
}

// GetBidByID retrieves a bid posting by ID.
func (r *BiddingRepository) GetBidByID(ctx context.Context, bidID string) (*domain.Bid, error) {
	query, args, err := psql.
		Select("id", "project_id", "posted_by", "description", "deadline", "created_at").
		From("bids").
		Where(sq.Eq{"id": bidID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetBidByID query: %w", err)
	}

	var bid domain.Bid
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&bid.ID, &bid.ProjectID, &bid.PostedBy, &bid.Description, &bid.Deadline, &bid.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, fmt.Errorf("scan bid: %w", err)
	}
	return &bid, nil
}

// Create creates a new bidding (freelancer proposal) within a transaction.
func (r *BiddingRepository) Create(ctx context.Context, tx pgx.Tx, b *domain.Bidding) (*domain.Bidding, error) {
	if b.Status == "" {
		b.Status = domain.BiddingStatusPending
	}

	query, args, err := psql.
		Insert("biddings").
		Columns(
			"bid_id", "project_id", "freelancer_id", "amount", "timeline_days",
			"proposal", "status", "is_shortlisted", "is_accepted", "is_declined",
		).
		Values(
			b.BidID, b.ProjectID, b.FreelancerID, b.Amount, b.TimelineDays,
			b.Proposal, b.Status, b.IsShortlisted, b.IsAccepted, b.IsDeclined,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for bidding: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create bidding: %w", err)
	}
	return b, nil
}

// GetByID retrieves a bidding by ID.
func (r *BiddingRepository) GetByID(ctx context.Context, biddingID string) (*domain.Bidding, error) {
	query, args, err := psql.
		Select(biddingColumns...).
		From("biddings").
		Where(sq.Eq{"id": biddingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for bidding: %w", err)
	}

	return scanBidding(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a bidding with FOR UPDATE lock (within transaction).
func (r *BiddingRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, biddingID string) (*domain.Bidding, error) {
	query, args, err := psql.
		Select(biddingColumns...).
		From("biddings").
		Where(sq.Eq{"id": biddingID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for bidding %s: %w", biddingID, err)
	}

	return scanBidding(tx.QueryRow(ctx, query, args...))
}

// BiddingWithFreelancerAndProject is a bidding hydrated with its
// freelancer and project.
type BiddingWithFreelancerAndProject struct {
	Bidding    *domain.Bidding
	Freelancer *domain.User
	Project    *domain.Project
}

// GetWithFreelancerAndProject retrieves a bidding joined with its
// freelancer and project in one round trip.
func (r *BiddingRepository) GetWithFreelancerAndProject(ctx context.Context, biddingID string) (*BiddingWithFreelancerAndProject, error) {
	query, args, err := psql.
		Select(
			"b.id", "b.bid_id", "b.project_id", "b.freelancer_id", "b.amount", "b.timeline_days",
			"b.proposal", "b.status", "b.is_shortlisted", "b.is_accepted", "b.is_declined",
			"b.created_at", "b.updated_at",
			"u.id", "u.name", "u.email", "u.role", "u.is_active",
			"p.id", "p.client_id", "p.title", "p.status", "p.is_open_for_bidding",
		).
		From("biddings b").
		Join("users u ON u.id = b.freelancer_id").
		Join("projects p ON p.id = b.project_id").
		Where(sq.Eq{"b.id": biddingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetWithFreelancerAndProject query for bidding %s: %w", biddingID, err)
	}

	var b domain.Bidding
	var u domain.User
	var p domain.Project
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID, &b.BidID, &b.ProjectID, &b.FreelancerID, &b.Amount, &b.TimelineDays,
		&b.Proposal, &b.Status, &b.IsShortlisted, &b.IsAccepted, &b.IsDeclined,
		&b.CreatedAt, &b.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive,
		&p.ID, &p.ClientID, &p.Title, &p.Status, &p.IsOpenForBidding,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBiddingNotFound
		}
		return nil, fmt.Errorf("scan bidding with freelancer and project: %w", err)
	}

	return &BiddingWithFreelancerAndProject{Bidding: &b, Freelancer: &u, Project: &p}, nil
}

// ListByProject retrieves all biddings for a project.
func (r *BiddingRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Bidding, error) {
	query, args, err := psql.
		Select(biddingColumns...).
		From("biddings").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByProject query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query biddings: %w", err)
	}

	return scanBiddings(rows)
}

// ListShortlisted retrieves the currently shortlisted biddings for a project.
func (r *BiddingRepository) ListShortlisted(ctx context.Context, projectID string) ([]*domain.Bidding, error) {
	query, args, err := psql.
		Select(biddingColumns...).
		From("biddings").
		Where(sq.Eq{
			"project_id":     projectID,
			"is_shortlisted": true,
			"status":         domain.BiddingStatusShortlisted,
		}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListShortlisted query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shortlisted biddings: %w", err)
	}

	return scanBiddings(rows)
}

// Accept marks a bidding accepted. The ux_biddings_accepted unique
// partial index makes a second accepted bidding on the same project
// impossible: a concurrent winner surfaces as ErrBidAlreadyAccepted.
func (r *BiddingRepository) Accept(ctx context.Context, tx pgx.Tx, biddingID string) error {
	query, args, err := psql.
		Update("biddings").
		Set("status", domain.BiddingStatusAccepted).
		Set("is_accepted", true).
		Set("is_declined", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":          biddingID,
			"is_accepted": false,
		}).
		Where(sq.Eq{"status": []domain.BiddingStatus{
			domain.BiddingStatusPending,
			domain.BiddingStatusShortlisted,
		}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Accept query for bidding %s: %w", biddingID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrBidAlreadyAccepted
		}
		return fmt.Errorf("accept bidding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBiddingDecided
	}
	return nil
}

// RejectSiblings rejects every undecided bidding on the project except
// the accepted one and returns the freelancer IDs that lost.
func (r *BiddingRepository) RejectSiblings(ctx context.Context, tx pgx.Tx, projectID, acceptedID string) ([]string, error) {
	query, args, err := psql.
		Update("biddings").
		Set("status", domain.BiddingStatusRejected).
		Set("is_declined", true).
		Set("is_shortlisted", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"project_id": projectID}).
		Where(sq.NotEq{"id": acceptedID}).
		Where(sq.Eq{"status": []domain.BiddingStatus{
			domain.BiddingStatusPending,
			domain.BiddingStatusShortlisted,
		}}).
		Suffix("RETURNING freelancer_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build RejectSiblings query for project %s: %w", projectID, err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reject sibling biddings: %w", err)
	}
	defer rows.Close()

	var freelancerIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rejected freelancer: %w", err)
		}
		freelancerIDs = append(freelancerIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return freelancerIDs, nil
}

// UpdateStatus moves a bidding between undecided statuses (shortlist,
// withdraw, reject) with an expected-old-status guard.
func (r *BiddingRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	biddingID string,
	oldStatus domain.BiddingStatus,
	newStatus domain.BiddingStatus,
) error {
	qb := psql.
		Update("biddings").
		Set("status", newStatus).
		Set("is_shortlisted", newStatus == domain.BiddingStatusShortlisted).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     biddingID,
			"status": oldStatus,
		})

	if newStatus == domain.BiddingStatusRejected {
		qb = qb.Set("is_declined", true)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for bidding %s: %w", biddingID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update bidding status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBiddingDecided
	}
	return nil
}
