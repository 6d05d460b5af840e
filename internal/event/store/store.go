package store

import (
	"context"

	"campusconnect/internal/event/models"
	id "campusconnect/pkg/domain"
)

// EventStore is the persistence boundary for event listings.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)

	// List returns all events ordered by event date, soonest first.
	List(ctx context.Context) ([]*models.Event, error)

	// Execute atomically runs validate then apply against one event while
	// holding its lock.
	Execute(ctx context.Context, eventID id.EventID,
		validate func(e *models.Event) error,
		apply func(e *models.Event) error) (*models.Event, error)

	Delete(ctx context.Context, eventID id.EventID) error
}
