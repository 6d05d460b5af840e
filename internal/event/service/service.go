package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"campusconnect/internal/audit"
	"campusconnect/internal/event/models"
	"campusconnect/internal/event/store"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/platform/sentinel"
	"campusconnect/pkg/requestcontext"
)

var tracer = otel.Tracer("campusconnect/internal/event")

// AuditPublisher records event lifecycle changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service manages campus event listings.
type Service struct {
	events  store.EventStore
	logger  *slog.Logger
	auditor AuditPublisher
}

func New(events store.EventStore, opts ...Option) *Service {
	s := &Service{events: events, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// Create publishes a new event with the caller as organizer.
func (s *Service) Create(ctx context.Context, organizer id.UserID, details models.Details) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.Create")
	defer span.End()

	event, err := models.NewEvent(id.NewEventID(), organizer, details, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create event")
	}

	s.emit(ctx, audit.Event{Actor: organizer, Action: audit.ActionEventCreated, Subject: event.ID.String()})
	return event, nil
}

// List returns all events ordered by date, soonest first.
func (s *Service) List(ctx context.Context) ([]*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.List")
	defer span.End()

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list events")
	}
	return events, nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.Get")
	defer span.End()

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return event, nil
}

// Update replaces an event's details. Organizer only.
func (s *Service) Update(ctx context.Context, me id.UserID, eventID id.EventID, details models.Details) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.Update")
	defer span.End()

	event, err := s.events.Execute(ctx, eventID,
		func(e *models.Event) error { return e.CanModifyBy(me) },
		func(e *models.Event) error { return e.ApplyUpdate(details) })
	if err != nil {
		return nil, s.mapStoreError(err)
	}

	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionEventUpdated, Subject: eventID.String()})
	return event, nil
}

// Delete removes an event. Organizer only.
func (s *Service) Delete(ctx context.Context, me id.UserID, eventID id.EventID) error {
	ctx, span := tracer.Start(ctx, "event.Delete")
	defer span.End()

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return s.mapStoreError(err)
	}
	if err := event.CanModifyBy(me); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return s.mapStoreError(err)
	}

	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionEventDeleted, Subject: eventID.String()})
	return nil
}

func (s *Service) mapStoreError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, event)
	}
}
