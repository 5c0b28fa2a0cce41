package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
)

// TimelineRepository handles database operations for project timeline entries.
// The table is append-only: entries are created exactly once per committed
// transition and never updated or deleted.
type TimelineRepository struct {
	pool *pgxpool.Pool
}

// NewTimelineRepository creates a new TimelineRepository.
func NewTimelineRepository(pool *pgxpool.Pool) *TimelineRepository {
	return &TimelineRepository{pool: pool}
}

// Create appends a timeline entry within the transition's transaction.
func (r *TimelineRepository) Create(ctx context.Context, tx pgx.Tx, entry *domain.TimelineEntry) error {
	query, args, err := psql.
		Insert("project_timeline").
		Columns("project_id", "actor_id", "actor_role", "old_status", "new_status", "action", "remark").
		Values(entry.ProjectID, entry.ActorID, entry.ActorRole, entry.OldStatus, entry.NewStatus, entry.Action, entry.Remark).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create timeline entry: %w", err)
	}

	return nil
}

// ListByProject retrieves all timeline entries for a project in order.
func (r *TimelineRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.TimelineEntry, error) {
	query, args, err := psql.
		Select("id", "project_id", "actor_id", "actor_role", "old_status", "new_status", "action", "remark", "created_at").
		From("project_timeline").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TimelineEntry
	for rows.Next() {
		var e domain.TimelineEntry
		err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.ActorID,
			&e.ActorRole,
			&e.OldStatus,
			&e.NewStatus,
			&e.Action,
			&e.Remark,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
