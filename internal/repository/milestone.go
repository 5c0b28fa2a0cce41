package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
)

// milestoneColumns is the shared list of columns for milestone queries.
var milestoneColumns = []string{
	"id", "project_id", "title", "amount", "status", "payment_status", "is_paid",
	"created_at", "updated_at",
}

// MilestoneRepository handles database operations for milestones.
type MilestoneRepository struct {
	pool *pgxpool.Pool
}

// NewMilestoneRepository creates a new MilestoneRepository.
func NewMilestoneRepository(pool *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{pool: pool}
}

func scanMilestone(row pgx.Row) (*domain.Milestone, error) {
	var m domain.Milestone
	err := row.Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&m.Amount,
		&m.Status,
		&m.PaymentStatus,
		&m.IsPaid,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("scan milestone: %w", err)
	}
	return &m, nil
}

// Create creates a new milestone within a transaction.
func (r *MilestoneRepository) Create(ctx context.Context, tx pgx.Tx, m *domain.Milestone) (*domain.Milestone, error) {
	if m.Status == "" {
		m.Status = domain.MilestoneStatusActive
	}
	if m.PaymentStatus == "" {
		m.PaymentStatus = domain.PaymentStatusNotRequested
	}

	query, args, err := psql.
		Insert("milestones").
		Columns("project_id", "title", "amount", "status", "payment_status", "is_paid").
		Values(m.ProjectID, m.Title, m.Amount, m.Status, m.PaymentStatus, m.IsPaid).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for milestone: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create milestone: %w", err)
	}

	return m, nil
}

// GetByIDForUpdate retrieves a milestone with FOR UPDATE lock (within transaction).
func (r *MilestoneRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, milestoneID string) (*domain.Milestone, error) {
	query, args, err := psql.
		Select(milestoneColumns...).
		From("milestones").
		Where(sq.Eq{"id": milestoneID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for milestone %s: %w", milestoneID, err)
	}

	return scanMilestone(tx.QueryRow(ctx, query, args...))
}

// UpdateStatus updates the milestone work status.
func (r *MilestoneRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	milestoneID string,
	oldStatus domain.MilestoneStatus,
	newStatus domain.MilestoneStatus,
) error {
	query, args, err := psql.
		Update("milestones").
		Set("status", newStatus).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     milestoneID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for milestone %s: %w", milestoneID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update milestone status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMilestoneNotActive
	}
	return nil
}

// AdvancePayment moves the payment status with an expected-old-status
// guard, keeping the walk monotonic under concurrent requests.
func (r *MilestoneRepository) AdvancePayment(
	ctx context.Context,
	tx pgx.Tx,
	milestoneID string,
	oldStatus domain.PaymentStatus,
	newStatus domain.PaymentStatus,
) error {
	qb := psql.
		Update("milestones").
		Set("payment_status", newStatus).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":             milestoneID,
			"payment_status": oldStatus,
		})

	if newStatus == domain.PaymentStatusPaid {
		qb = qb.Set("is_paid", true)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build AdvancePayment query for milestone %s: %w", milestoneID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("advance milestone payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidPaymentAdvance
	}
	return nil
}

// ListByProject retrieves all milestones of a project in creation order.
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Milestone, error) {
	query, args, err := psql.
		Select(milestoneColumns...).
		From("milestones").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByProject query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return milestones, nil
}
