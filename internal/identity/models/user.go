package models

import (
	"time"

	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

// User is the aggregate root for a member account.
//
// Invariants:
//   - RegNo is non-empty and immutable after construction
//   - A user never appears in its own Connections, Requests, or Outgoing
//   - Connections is symmetric across the graph: if A lists B, B lists A
//   - Requests (incoming pending) and Outgoing (sent pending) mirror each
//     other across the pair: A in B.Requests iff B in A.Outgoing
//   - No pair is simultaneously connected and pending in either direction
//
// The symmetric invariants span two records and are enforced by the graph
// service through the store's ExecutePair, which commits both sides as one
// logical unit. The Can*/Apply* methods below validate and mutate a single
// record; they never reach across to the peer.
type User struct {
	ID           id.UserID   `json:"id"`
	Name         string      `json:"name"`
	RegNo        string      `json:"reg_no"`
	Email        string      `json:"email"`
	Mobile       string      `json:"mobile"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	Connections  []id.UserID `json:"-"`
	Requests     []id.UserID `json:"-"`
	Outgoing     []id.UserID `json:"-"`
}

// Summary is the public projection of a user returned by listings.
type Summary struct {
	ID     id.UserID `json:"id"`
	Name   string    `json:"name"`
	RegNo  string    `json:"reg_no"`
	Email  string    `json:"email"`
	Mobile string    `json:"mobile"`
}

func NewUser(userID id.UserID, name, regNo, email, mobile, passwordHash string, now time.Time) (*User, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if regNo == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration number cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &User{
		ID:           userID,
		Name:         name,
		RegNo:        regNo,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// Summary returns the public projection of the user.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, RegNo: u.RegNo, Email: u.Email, Mobile: u.Mobile}
}

func contains(refs []id.UserID, userID id.UserID) bool {
	for _, ref := range refs {
		if ref == userID {
			return true
		}
	}
	return false
}

func remove(refs []id.UserID, userID id.UserID) []id.UserID {
	out := refs[:0]
	for _, ref := range refs {
		if ref != userID {
			out = append(out, ref)
		}
	}
	return out
}

// IsConnectedTo reports whether other is a confirmed connection.
func (u *User) IsConnectedTo(other id.UserID) bool {
	return contains(u.Connections, other)
}

// HasRequestFrom reports whether sender has a pending incoming request.
func (u *User) HasRequestFrom(sender id.UserID) bool {
	return contains(u.Requests, sender)
}

// HasRequestTo reports whether a pending outgoing request to recipient exists.
func (u *User) HasRequestTo(recipient id.UserID) bool {
	return contains(u.Outgoing, recipient)
}

// CanReceiveRequestFrom checks whether a new pending request from sender is
// admissible on this record. A pending request in the opposite direction
// does not block: both directions may be pending at once.
func (u *User) CanReceiveRequestFrom(sender id.UserID) error {
	if sender == u.ID {
		return dErrors.New(dErrors.CodeSelfReference, "cannot send a connection request to yourself")
	}
	if u.IsConnectedTo(sender) {
		return dErrors.New(dErrors.CodeAlreadyConnected, "already connected")
	}
	if u.HasRequestFrom(sender) {
		return dErrors.New(dErrors.CodeDuplicateRequest, "request already sent")
	}
	return nil
}

// CanAcceptRequestFrom checks whether a pending request from requester can
// be resolved on this record.
func (u *User) CanAcceptRequestFrom(requester id.UserID) error {
	if !u.HasRequestFrom(requester) {
		return dErrors.New(dErrors.CodeNoSuchRequest, "no request from this user")
	}
	return nil
}

// ApplyIncomingRequest records a pending request from sender.
// Call CanReceiveRequestFrom first to validate.
func (u *User) ApplyIncomingRequest(sender id.UserID) {
	u.Requests = append(u.Requests, sender)
}

// ApplyOutgoingRequest records a pending request to recipient on the sender.
func (u *User) ApplyOutgoingRequest(recipient id.UserID) {
	u.Outgoing = append(u.Outgoing, recipient)
}

// ApplyConnection records a confirmed connection and clears any pending
// state toward other, in both directions, so a pair can never be connected
// and pending at once.
func (u *User) ApplyConnection(other id.UserID) {
	if !u.IsConnectedTo(other) {
		u.Connections = append(u.Connections, other)
	}
	u.Requests = remove(u.Requests, other)
	u.Outgoing = remove(u.Outgoing, other)
}

// ApplyIncomingRemoval drops the pending request from sender without
// creating a connection. A pending request in the opposite direction is
// left untouched.
func (u *User) ApplyIncomingRemoval(sender id.UserID) {
	u.Requests = remove(u.Requests, sender)
}

// ApplyOutgoingRemoval drops the sender-side record of a pending request to
// recipient.
func (u *User) ApplyOutgoingRemoval(recipient id.UserID) {
	u.Outgoing = remove(u.Outgoing, recipient)
}

// Clone returns a deep copy so stores can hand out records without aliasing
// their internal state.
func (u *User) Clone() *User {
	cp := *u
	cp.Connections = append([]id.UserID(nil), u.Connections...)
	cp.Requests = append([]id.UserID(nil), u.Requests...)
	cp.Outgoing = append([]id.UserID(nil), u.Outgoing...)
	return &cp
}
