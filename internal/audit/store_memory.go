package audit

import (
	"context"
	"sync"

	id "campusconnect/pkg/domain"
)

// InMemoryStore keeps audit events per actor. Append-only.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.UserID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.UserID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Actor] = append(s.events[event.Actor], event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor id.UserID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[actor]...), nil
}
