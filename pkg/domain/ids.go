// Package domain holds shared domain primitives: strongly typed identifiers
// that prevent cross-entity ID mixups at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "campusconnect/pkg/domain-errors"
)

// Typed identifiers. Distinct types mean a PostID can never be passed where
// a UserID is expected.
type (
	UserID    uuid.UUID
	PostID    uuid.UUID
	EventID   uuid.UUID
	MessageID uuid.UUID
)

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewPostID returns a fresh random post ID.
func NewPostID() PostID { return PostID(uuid.New()) }

// NewEventID returns a fresh random event ID.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewMessageID returns a fresh random message ID.
func NewMessageID() MessageID { return MessageID(uuid.New()) }

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id PostID) String() string    { return uuid.UUID(id).String() }
func (id EventID) String() string   { return uuid.UUID(id).String() }
func (id MessageID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PostID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling renders IDs as canonical UUID strings in JSON rather than
// the underlying byte array.
func (id UserID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PostID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id MessageID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PostID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MessageID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// parseUUID enforces the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id cannot be nil")
	}
	return parsed, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParsePostID validates and converts a string into a PostID.
func ParsePostID(s string) (PostID, error) {
	parsed, err := parseUUID(s, "post")
	if err != nil {
		return PostID{}, err
	}
	return PostID(parsed), nil
}

// ParseEventID validates and converts a string into an EventID.
func ParseEventID(s string) (EventID, error) {
	parsed, err := parseUUID(s, "event")
	if err != nil {
		return EventID{}, err
	}
	return EventID(parsed), nil
}

// ParseMessageID validates and converts a string into a MessageID.
func ParseMessageID(s string) (MessageID, error) {
	parsed, err := parseUUID(s, "message")
	if err != nil {
		return MessageID{}, err
	}
	return MessageID(parsed), nil
}
