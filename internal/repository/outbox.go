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

// Outbox entry statuses.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusDispatched = "dispatched"
	OutboxStatusDead       = "dead"
)

// OutboxEntry is one pending notification event. The row is written in
// the same transaction as the state change it describes, giving
// at-least-once delivery without blocking the request path.
type OutboxEntry struct {
	Event    domain.Event
	Status   string
	Attempts int
}

// OutboxRepository handles database operations for the notification outbox.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Enqueue appends an event to the outbox within the caller's transaction.
// The event ID is assigned here and stays stable across redeliveries.
func (r *OutboxRepository) Enqueue(ctx context.Context, tx pgx.Tx, event *domain.Event) error {
	if event.Payload == nil {
		event.Payload = domain.Payload{}
	}

	query, args, err := psql.
		Insert("notification_outbox").
		Columns("event_type", "project_id", "actor_id", "payload").
		Values(event.Type, event.ProjectID, event.ActorID, event.Payload).
		Suffix("RETURNING id, occurred_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Enqueue query: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&event.ID, &event.OccurredAt)
	if err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}

	return nil
}

// ListPending retrieves up to limit pending entries, oldest first.
// Two workers may pick up the same entry; the notification insert's
// idempotency key keeps redelivery duplicate-free.
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*OutboxEntry, error) {
	query, args, err := psql.
		Select("id", "event_type", "project_id", "actor_id", "payload", "status", "attempts", "occurred_at").
		From("notification_outbox").
		Where(sq.Eq{"status": OutboxStatusPending}).
		OrderBy("occurred_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListPending query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []*OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		err := rows.Scan(
			&e.Event.ID,
			&e.Event.Type,
			&e.Event.ProjectID,
			&e.Event.ActorID,
			&e.Event.Payload,
			&e.Status,
			&e.Attempts,
			&e.Event.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// MarkDispatched records successful delivery of an outbox entry.
func (r *OutboxRepository) MarkDispatched(ctx context.Context, eventID string) error {
	query, args, err := psql.
		Update("notification_outbox").
		Set("status", OutboxStatusDispatched).
		Set("dispatched_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkDispatched query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark outbox entry dispatched: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("outbox entry not found")
	}
	return nil
}

// MarkFailed increments the attempt counter; entries that exhausted
// maxAttempts move to the dead-letter status and are no longer claimed.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, maxAttempts int) error {
	query, args, err := psql.
		Update("notification_outbox").
		Set("attempts", sq.Expr("attempts + 1")).
		Set("status", sq.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
			maxAttempts, OutboxStatusDead, OutboxStatusPending)).
		Where(sq.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkFailed query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark outbox entry failed: %w", err)
	}
	return nil
}
