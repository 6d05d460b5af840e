package store

import (
	"context"
	"sort"
	"sync"

	"campusconnect/internal/event/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// InMemory keeps events in process memory.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.EventID]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]*models.Event)}
}

func (s *InMemory) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if event, ok := s.events[eventID]; ok {
		return event.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*models.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event.Clone())
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID.String() < events[j].ID.String()
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func (s *InMemory) Execute(_ context.Context, eventID id.EventID,
	validate func(e *models.Event) error,
	apply func(e *models.Event) error) (*models.Event, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(event); err != nil {
		return nil, err
	}
	// Apply on a copy first so a validation failure inside apply leaves the
	// stored record untouched.
	updated := event.Clone()
	if err := apply(updated); err != nil {
		return nil, err
	}
	s.events[eventID] = updated
	return updated.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, eventID id.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.events, eventID)
	return nil
}
