package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "campusconnect/pkg/domain"
)

// Store is the persistence boundary for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor id.UserID) ([]Event, error)
}

// Publisher hands events to the background worker through a buffered
// channel. Emission never blocks a request: when the buffer is full the
// event is dropped and counted, because audit must not add latency to the
// write path.
type Publisher struct {
	inbox   chan Event
	logger  *slog.Logger
	mu      sync.Mutex
	dropped int
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit queues an event for the worker.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		p.mu.Lock()
		p.dropped++
		dropped := p.dropped
		p.mu.Unlock()
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"dropped_total", dropped,
		)
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Dropped reports how many events were discarded due to a full buffer.
func (p *Publisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
