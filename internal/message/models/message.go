package models

import (
	"strings"
	"time"

	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

const maxTextLength = 2000

// Message is one direct message between two members.
type Message struct {
	ID        id.MessageID `json:"id"`
	From      id.UserID    `json:"from"`
	To        id.UserID    `json:"to"`
	Text      string       `json:"text"`
	Reactions []Reaction   `json:"reactions"`
	CreatedAt time.Time    `json:"created_at"`
}

// Reaction is an emoji response. Each user holds at most one reaction per
// message.
type Reaction struct {
	By    id.UserID `json:"by"`
	Emoji string    `json:"emoji"`
}

func NewMessage(messageID id.MessageID, from, to id.UserID, text string, now time.Time) (*Message, error) {
	if from == to {
		return nil, dErrors.New(dErrors.CodeSelfReference, "cannot message yourself")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "message text is required")
	}
	if len(text) > maxTextLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "message text too long")
	}
	return &Message{
		ID:        messageID,
		From:      from,
		To:        to,
		Text:      text,
		CreatedAt: now,
	}, nil
}

// IsParticipant reports whether the user is either side of the message.
func (m *Message) IsParticipant(userID id.UserID) bool {
	return m.From == userID || m.To == userID
}

// CanDeleteBy enforces sender-only deletion.
func (m *Message) CanDeleteBy(userID id.UserID) error {
	if m.From != userID {
		return dErrors.New(dErrors.CodeForbidden, "only the sender can delete a message")
	}
	return nil
}

// CanReactBy restricts reactions to the two participants.
func (m *Message) CanReactBy(userID id.UserID, emoji string) error {
	if !m.IsParticipant(userID) {
		return dErrors.New(dErrors.CodeForbidden, "not a participant in this conversation")
	}
	if strings.TrimSpace(emoji) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reaction emoji is required")
	}
	return nil
}

// ApplyReaction sets the user's reaction. Reacting again with the same emoji
// removes it; a different emoji replaces the previous one.
func (m *Message) ApplyReaction(userID id.UserID, emoji string) {
	for i, reaction := range m.Reactions {
		if reaction.By != userID {
			continue
		}
		if reaction.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
		} else {
			m.Reactions[i].Emoji = emoji
		}
		return
	}
	m.Reactions = append(m.Reactions, Reaction{By: userID, Emoji: emoji})
}

// Clone returns a deep copy for stores that hand out records.
func (m *Message) Clone() *Message {
	cp := *m
	cp.Reactions = append([]Reaction(nil), m.Reactions...)
	return &cp
}
