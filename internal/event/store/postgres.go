package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campusconnect/internal/event/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// Schema documents the table this store expects.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date TIMESTAMPTZ NOT NULL,
	venue TEXT NOT NULL,
	organizer_id UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS events_date ON events (date);
`

// Postgres persists event listings in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, event *models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, date, venue, organizer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(event.ID), event.Title, event.Description, event.Date, event.Venue,
		uuid.UUID(event.Organizer), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, date, venue, organizer_id, created_at
		FROM events WHERE id = $1
	`, uuid.UUID(eventID))
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, date, venue, organizer_id, created_at
		FROM events ORDER BY date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, eventID id.EventID,
	validate func(e *models.Event) error,
	apply func(e *models.Event) error) (*models.Event, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
		SELECT id, title, description, date, venue, organizer_id, created_at
		FROM events WHERE id = $1 FOR UPDATE
	`, uuid.UUID(eventID))
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	if err := validate(event); err != nil {
		return nil, err
	}
	if err := apply(event); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE events SET title = $2, description = $3, date = $4, venue = $5 WHERE id = $1
	`, uuid.UUID(event.ID), event.Title, event.Description, event.Date, event.Venue); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return event, nil
}

func (s *Postgres) Delete(ctx context.Context, eventID id.EventID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, uuid.UUID(eventID))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type eventRow interface {
	Scan(dest ...any) error
}

func scanEvent(row eventRow) (*models.Event, error) {
	var event models.Event
	var rawID, rawOrganizer uuid.UUID
	if err := row.Scan(&rawID, &event.Title, &event.Description, &event.Date,
		&event.Venue, &rawOrganizer, &event.CreatedAt); err != nil {
		return nil, err
	}
	event.ID = id.EventID(rawID)
	event.Organizer = id.UserID(rawOrganizer)
	return &event, nil
}
