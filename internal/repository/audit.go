package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
)

// AuditRepository handles database operations for audit and activity
// log entries. Both tables are write-once: rows are queried but never
// updated.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// CreateAudit appends an audit log entry within the caller's
// transaction, so the record commits or rolls back together with the
// change it describes.
func (r *AuditRepository) CreateAudit(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error {
	if entry.PreviousValues == nil {
		entry.PreviousValues = map[string]any{}
	}
	if entry.NewValues == nil {
		entry.NewValues = map[string]any{}
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityInfo
	}

	query, args, err := psql.
		Insert("audit_logs").
		Columns(
			"actor_id", "actor_role", "action", "target_kind", "target_id",
			"severity", "description", "previous_values", "new_values", "metadata",
		).
		Values(
			entry.ActorID, entry.ActorRole, entry.Action, entry.TargetKind, entry.TargetID,
			entry.Severity, entry.Description, entry.PreviousValues, entry.NewValues, entry.Metadata,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit log entry: %w", err)
	}

	return nil
}

// CreateActivity appends an activity log entry.
func (r *AuditRepository) CreateActivity(ctx context.Context, entry *domain.ActivityLog) error {
	query, args, err := psql.
		Insert("activity_logs").
		Columns("user_id", "action", "target_kind", "target_id", "description").
		Values(entry.UserID, entry.Action, entry.TargetKind, entry.TargetID, entry.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create activity log entry: %w", err)
	}

	return nil
}

// ListAuditByTarget retrieves audit entries for one target, newest first.
func (r *AuditRepository) ListAuditByTarget(ctx context.Context, targetKind, targetID string, limit int) ([]*domain.AuditLog, error) {
	query, args, err := psql.
		Select(
			"id", "actor_id", "actor_role", "action", "target_kind", "target_id",
			"severity", "description", "previous_values", "new_values", "metadata", "created_at",
		).
		From("audit_logs").
		Where(sq.Eq{
			"target_kind": targetKind,
			"target_id":   targetID,
		}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog
		err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.TargetKind, &e.TargetID,
			&e.Severity, &e.Description, &e.PreviousValues, &e.NewValues, &e.Metadata, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
