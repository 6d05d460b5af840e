package models

import (
	"strings"
	"time"

	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

// Event is a campus event listing. Only the organizer may change or remove
// it.
type Event struct {
	ID          id.EventID `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	Venue       string     `json:"venue"`
	Organizer   id.UserID  `json:"organizer"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Details carries the mutable fields for creation and updates.
type Details struct {
	Title       string
	Description string
	Date        time.Time
	Venue       string
}

func (d Details) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event title is required")
	}
	if strings.TrimSpace(d.Venue) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event venue is required")
	}
	if d.Date.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "event date is required")
	}
	return nil
}

func NewEvent(eventID id.EventID, organizer id.UserID, details Details, now time.Time) (*Event, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}
	return &Event{
		ID:          eventID,
		Title:       strings.TrimSpace(details.Title),
		Description: details.Description,
		Date:        details.Date,
		Venue:       strings.TrimSpace(details.Venue),
		Organizer:   organizer,
		CreatedAt:   now,
	}, nil
}

// CanModifyBy enforces organizer-only updates and deletion.
func (e *Event) CanModifyBy(userID id.UserID) error {
	if e.Organizer != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the organizer can modify an event")
	}
	return nil
}

// ApplyUpdate replaces the mutable fields.
func (e *Event) ApplyUpdate(details Details) error {
	if err := details.validate(); err != nil {
		return err
	}
	e.Title = strings.TrimSpace(details.Title)
	e.Description = details.Description
	e.Date = details.Date
	e.Venue = strings.TrimSpace(details.Venue)
	return nil
}

// Clone returns a copy for stores that hand out records.
func (e *Event) Clone() *Event {
	cp := *e
	return &cp
}
