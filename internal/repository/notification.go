package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigforge/gigforge/internal/domain"
)

// notificationColumns is the shared list of columns for notification queries.
var notificationColumns = []string{
	"id", "user_id", "event_id", "rule_key", "type", "title", "message",
	"related_project_id", "metadata", "is_read", "read_at", "created_at",
}

// NotificationRepository handles database operations for notifications.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.EventID,
		&n.RuleKey,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.RelatedProjectID,
		&n.Metadata,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	return &n, nil
}

// Create persists a notification record. The (event_id, user_id, rule_key)
// unique index makes redelivery a no-op; the bool result reports whether
// a new row was actually inserted.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}

	query, args, err := psql.
		Insert("notifications").
		Columns(
			"user_id", "event_id", "rule_key", "type", "title", "message",
			"related_project_id", "metadata",
		).
		Values(
			n.UserID, n.EventID, n.RuleKey, n.Type, n.Title, n.Message,
			n.RelatedProjectID, n.Metadata,
		).
		Suffix("ON CONFLICT (event_id, user_id, rule_key) DO NOTHING RETURNING id, created_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build Create query for notification: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Duplicate delivery of the same event through the same rule.
			return false, nil
		}
		return false, fmt.Errorf("create notification: %w", err)
	}

	return true, nil
}

// MarkRead marks a notification read by its recipient. Marking read is
// the only mutation a notification record permits.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	query, args, err := psql.
		Update("notifications").
		Set("is_read", true).
		Set("read_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":      notificationID,
			"user_id": userID,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build MarkRead query for notification %s: %w", notificationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// encodeCursor packs the last returned row's position into an opaque token.
func encodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor unpacks an opaque pagination token.
func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", errors.New("malformed cursor")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parse cursor timestamp: %w", err)
	}
	return ts, parts[1], nil
}

// ListByUser retrieves a page of the user's notifications, newest first.
// The returned cursor is an opaque token derived from the last row;
// an empty cursor means no further pages.
func (r *NotificationRepository) ListByUser(
	ctx context.Context,
	userID string,
	cursor string,
	limit int,
) ([]*domain.Notification, string, error) {
	qb := psql.
		Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	if cursor != "" {
		ts, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		qb = qb.Where(sq.Expr("(created_at, id) < (?, ?)", ts, id))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("build ListByUser query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, "", err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate rows: %w", err)
	}

	next := ""
	if len(notifications) == limit {
		last := notifications[len(notifications)-1]
		next = encodeCursor(last.CreatedAt, last.ID)
	}
	return notifications, next, nil
}
