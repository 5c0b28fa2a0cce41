package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gigforge/gigforge/internal/domain"
)

// GenericChannel is pushed for every created notification alongside
// the rule's specific channel.
const GenericChannel = "notification:created"

// Dispatcher persists one notification per (recipient, rule) and
// pushes realtime events, isolating failures per recipient.
type Dispatcher struct {
	registry *Registry
	resolver *Resolver
	store    NotificationStore
	realtime Realtime
	mailer   Mailer
	users    UserDirectory
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	registry *Registry,
	resolver *Resolver,
	store NotificationStore,
	realtime Realtime,
	mailer Mailer,
	users UserDirectory,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		resolver: resolver,
		store:    store,
		realtime: realtime,
		mailer:   mailer,
		users:    users,
	}
}

// Dispatch fans the event out to every recipient of every matching
// rule. The returned count is the number of notification records
// persisted. The error reports a malfunction of the routing table
// itself, never an individual recipient's delivery failure.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) (int, error) {
	if event.Type == "" {
		return 0, errors.New("event has no type")
	}

	rules := d.registry.RulesFor(event.Type)
	if len(rules) == 0 {
		slog.Debug("no routing rules for event", "event_type", event.Type)
		return 0, nil
	}

	payload := d.enrich(ctx, event)

	delivered := 0
	for _, rule := range rules {
		recipients, err := d.resolver.Resolve(ctx, rule, event)
		if err != nil {
			slog.Error("recipient resolution failed",
				"event_id", event.ID,
				"rule_key", rule.Key,
				"error", err,
			)
			continue
		}

		ruleDelivered := 0
		for _, userID := range recipients {
			if d.deliverOne(ctx, rule, event, payload, userID) {
				ruleDelivered++
			}
		}
		delivered += ruleDelivered

		// Group rules additionally get one role-wide push.
		if ruleDelivered > 0 && (rule.Role == domain.RoleAdmin || rule.Role == domain.RoleSuperadmin) {
			groupPayload := map[string]any{
				"type":    string(rule.Type),
				"title":   Render(rule.Template.Title, payload),
				"message": Render(rule.Template.Message, payload),
			}
			if err := d.realtime.EmitToRole(ctx, rule.Role, rule.Channel, groupPayload); err != nil {
				slog.Warn("realtime role push failed",
					"role", rule.Role,
					"channel", rule.Channel,
					"error", err,
				)
			}
		}
	}

	return delivered, nil
}

// deliverOne persists and pushes a single recipient's notification.
// Persistence comes first: the durable record takes precedence over
// ephemeral delivery. Returns true when a record was persisted.
func (d *Dispatcher) deliverOne(
	ctx context.Context,
	rule Rule,
	event domain.Event,
	payload domain.Payload,
	userID string,
) bool {
	projectID := event.ProjectID
	n := &domain.Notification{
		UserID:  userID,
		EventID: event.ID,
		RuleKey: rule.Key,
		Type:    rule.Type,
		Title:   Render(rule.Template.Title, payload),
		Message: Render(rule.Template.Message, payload),
		Metadata: map[string]any{
			"eventType": string(event.Type),
		},
	}
	if projectID != "" {
		n.RelatedProjectID = &projectID
	}

	inserted, err := d.store.Create(ctx, n)
	if err != nil {
		slog.Error("notification persist failed",
			"event_id", event.ID,
			"rule_key", rule.Key,
			"user_id", userID,
			"error", err,
		)
		return false
	}
	if !inserted {
		// Redelivery of an already-notified (event, rule, recipient).
		return false
	}

	pushPayload := map[string]any{
		"id":      n.ID,
		"type":    string(n.Type),
		"title":   n.Title,
		"message": n.Message,
	}
	if err := d.realtime.EmitToUser(ctx, userID, GenericChannel, pushPayload); err != nil {
		slog.Warn("realtime push failed",
			"user_id", userID,
			"channel", GenericChannel,
			"error", err,
		)
	}
	if err := d.realtime.EmitToUser(ctx, userID, rule.Channel, pushPayload); err != nil {
		slog.Warn("realtime push failed",
			"user_id", userID,
			"channel", rule.Channel,
			"error", err,
		)
	}

	d.emailOne(ctx, userID, n)

	return true
}

// emailOne sends the recipient a templated email, best-effort.
func (d *Dispatcher) emailOne(ctx context.Context, userID string, n *domain.Notification) {
	user, err := d.users.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("email recipient lookup failed", "user_id", userID, "error", err)
		return
	}
	if user.Email == "" {
		return
	}
	body := "<p>" + n.Message + "</p>"
	if err := d.mailer.SendTemplatedEmail(ctx, user.Email, n.Title, body); err != nil {
		slog.Warn("email send failed", "user_id", userID, "error", err)
	}
}

// enrich copies the event payload and fills lazy lookups, currently
// the freelancer's display name when only an ID was provided.
func (d *Dispatcher) enrich(ctx context.Context, event domain.Event) domain.Payload {
	payload := make(domain.Payload, len(event.Payload)+1)
	for k, v := range event.Payload {
		payload[k] = v
	}

	if payload.String(domain.PayloadKeyFreelancerName) == "" {
		id := payload.String(domain.PayloadKeyFreelancerID)
		if id == "" {
			id = payload.String(domain.PayloadKeyBidderID)
		}
		if id != "" {
			if user, err := d.users.GetUser(ctx, id); err == nil {
				payload[domain.PayloadKeyFreelancerName] = user.Name
			}
		}
	}

	return payload
}
