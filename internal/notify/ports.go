package notify

import (
	"context"
	"log/slog"

	"github.com/gigforge/gigforge/internal/domain"
)

// Realtime pushes payloads to connected clients. Emission is
// fire-and-forget: no delivery acknowledgment is surfaced.
type Realtime interface {
	EmitToUser(ctx context.Context, userID, channel string, payload any) error
	EmitToRole(ctx context.Context, role domain.Role, channel string, payload any) error
}

// Mailer sends templated email. A returned error may be logged but
// must never unwind a committed transition.
type Mailer interface {
	SendTemplatedEmail(ctx context.Context, to, subject, htmlBody string) error
}

// NotificationStore persists per-recipient notification records. The
// bool result reports whether a new record was inserted (false on an
// idempotent redelivery).
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) (bool, error)
}

// ProjectSource looks up project facts needed for recipient scoping.
type ProjectSource interface {
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
}

// UserDirectory looks up users for role scoping and name resolution.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListActiveByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}

// BiddingSource lists the currently shortlisted biddings of a project,
// used by shortlist-class freelancer scoping.
type BiddingSource interface {
	ListShortlisted(ctx context.Context, projectID string) ([]*domain.Bidding, error)
}

// LogRealtime is a Realtime adapter that only logs emissions. The real
// socket transport lives outside this service.
type LogRealtime struct{}

// EmitToUser logs a user-directed push.
func (LogRealtime) EmitToUser(ctx context.Context, userID, channel string, payload any) error {
	slog.Debug("realtime emit", "user_id", userID, "channel", channel)
	return nil
}

// EmitToRole logs a role-group push.
func (LogRealtime) EmitToRole(ctx context.Context, role domain.Role, channel string, payload any) error {
	slog.Debug("realtime emit to role", "role", role, "channel", channel)
	return nil
}

// LogMailer is a Mailer adapter that only logs sends.
type LogMailer struct{}

// SendTemplatedEmail logs the send without delivering anything.
func (LogMailer) SendTemplatedEmail(ctx context.Context, to, subject, htmlBody string) error {
	slog.Debug("email send", "to", to, "subject", subject)
	return nil
}
