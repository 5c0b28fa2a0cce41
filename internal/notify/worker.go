package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/repository"
)

// OutboxSource is the worker's view of the notification outbox.
type OutboxSource interface {
	ListPending(ctx context.Context, limit int) ([]*repository.OutboxEntry, error)
	MarkDispatched(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, maxAttempts int) error
}

// Worker drains the notification outbox, re-publishing events whose
// synchronous dispatch did not complete. Together with the
// notification idempotency key this gives at-least-once delivery
// without duplicate records.
type Worker struct {
	outbox      OutboxSource
	dispatcher  *Dispatcher
	batchSize   int
	maxAttempts int
}

// NewWorker creates a new outbox Worker.
func NewWorker(outbox OutboxSource, dispatcher *Dispatcher, batchSize, maxAttempts int) *Worker {
	return &Worker{
		outbox:      outbox,
		dispatcher:  dispatcher,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// DrainOnce processes one batch of pending outbox entries. Returns the
// number of entries successfully dispatched.
func (w *Worker) DrainOnce(ctx context.Context) (int, error) {
	entries, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	dispatched := 0
	for _, entry := range entries {
		if err := w.deliver(ctx, entry.Event); err != nil {
			slog.Error("outbox delivery failed",
				"event_id", entry.Event.ID,
				"event_type", entry.Event.Type,
				"attempts", entry.Attempts+1,
				"error", err,
			)
			if markErr := w.outbox.MarkFailed(ctx, entry.Event.ID, w.maxAttempts); markErr != nil {
				slog.Error("failed to mark outbox entry", "event_id", entry.Event.ID, "error", markErr)
			}
			if entry.Attempts+1 >= w.maxAttempts {
				slog.Error("outbox entry dead-lettered",
					"event_id", entry.Event.ID,
					"event_type", entry.Event.Type,
				)
			}
			continue
		}

		if err := w.outbox.MarkDispatched(ctx, entry.Event.ID); err != nil {
			slog.Error("failed to mark outbox entry dispatched", "event_id", entry.Event.ID, "error", err)
			continue
		}
		dispatched++
	}

	slog.Info("outbox drained",
		"total", len(entries),
		"dispatched", dispatched,
		"failed", len(entries)-dispatched,
	)
	return dispatched, nil
}

// deliver runs one dispatch attempt with a small bounded backoff so a
// transient store hiccup does not immediately burn an outbox attempt.
func (w *Worker) deliver(ctx context.Context, event domain.Event) error {
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := w.dispatcher.Dispatch(ctx, event); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Run drains the outbox on the given interval until the context is
// cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("notification worker started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("notification worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.DrainOnce(ctx); err != nil {
				slog.Error("outbox drain failed", "error", err)
			}
		}
	}
}
