// Package bus provides a minimal in-process event bus. Handlers run
// synchronously in subscription order; a handler failure is logged and
// never propagated to the publisher, since delivery is secondary to
// the committed state change that produced the event.
package bus

import (
	"context"
	"log/slog"

	"github.com/gigforge/gigforge/internal/domain"
)

// Handler consumes a published domain event.
type Handler func(ctx context.Context, event domain.Event) error

// Bus fans domain events out to subscribed handlers.
type Bus struct {
	handlers []Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all events. Subscription happens
// at startup wiring; the bus is not safe for concurrent mutation.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every handler. Handler errors are
// logged and swallowed.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	for _, h := range b.handlers {
		if err := h(ctx, event); err != nil {
			slog.Error("event handler failed",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err,
			)
		}
	}
}
