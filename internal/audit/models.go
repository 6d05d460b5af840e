package audit

import (
	"time"

	id "campusconnect/pkg/domain"
)

// Action names the event kinds the application emits.
type Action string

const (
	ActionUserRegistered  Action = "user.registered"
	ActionUserLoggedIn    Action = "user.logged_in"
	ActionRequestSent     Action = "connection.request_sent"
	ActionRequestAccepted Action = "connection.request_accepted"
	ActionRequestRejected Action = "connection.request_rejected"
	ActionPostCreated     Action = "post.created"
	ActionPostDeleted     Action = "post.deleted"
	ActionEventCreated    Action = "event.created"
	ActionEventUpdated    Action = "event.updated"
	ActionEventDeleted    Action = "event.deleted"
	ActionMessageSent     Action = "message.sent"
	ActionMessageDeleted  Action = "message.deleted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     id.UserID `json:"actor"`
	Action    Action    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
}
