package store

import (
	"context"

	"campusconnect/internal/message/models"
	id "campusconnect/pkg/domain"
)

// MessageStore is the persistence boundary for direct messages.
type MessageStore interface {
	Append(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, messageID id.MessageID) (*models.Message, error)

	// Conversation returns every message between the two users, oldest
	// first.
	Conversation(ctx context.Context, a, b id.UserID) ([]*models.Message, error)

	// Execute atomically runs validate then apply against one message
	// while holding its lock.
	Execute(ctx context.Context, messageID id.MessageID,
		validate func(m *models.Message) error,
		apply func(m *models.Message)) (*models.Message, error)

	Delete(ctx context.Context, messageID id.MessageID) error
}
