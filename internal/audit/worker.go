package audit

import (
	"context"
	"log/slog"
)

// Sink receives every event after it is persisted. Optional fan-out point
// for external systems (see KafkaSink).
type Sink interface {
	Send(ctx context.Context, event Event) error
}

// Worker consumes audit events from the publisher's channel and persists
// them. Runs until the context is cancelled, then drains what is already
// queued.
type Worker struct {
	store  Store
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.handle(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"error", err,
		)
		return
	}
	if w.sink != nil {
		if err := w.sink.Send(ctx, event); err != nil {
			w.logger.WarnContext(ctx, "audit sink delivery failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
