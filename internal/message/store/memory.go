package store

import (
	"context"
	"sync"

	"campusconnect/internal/message/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

// InMemory keeps messages in process memory, in arrival order.
type InMemory struct {
	mu       sync.RWMutex
	messages map[id.MessageID]*models.Message
	order    []id.MessageID
}

func NewInMemory() *InMemory {
	return &InMemory{messages: make(map[id.MessageID]*models.Message)}
}

func (s *InMemory) Append(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.ID] = message.Clone()
	s.order = append(s.order, message.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, messageID id.MessageID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if message, ok := s.messages[messageID]; ok {
		return message.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Conversation(_ context.Context, a, b id.UserID) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation := []*models.Message{}
	for _, messageID := range s.order {
		message, ok := s.messages[messageID]
		if !ok {
			continue
		}
		if (message.From == a && message.To == b) || (message.From == b && message.To == a) {
			conversation = append(conversation, message.Clone())
		}
	}
	return conversation, nil
}

func (s *InMemory) Execute(_ context.Context, messageID id.MessageID,
	validate func(m *models.Message) error,
	apply func(m *models.Message)) (*models.Message, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.messages[messageID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(message); err != nil {
		return nil, err
	}
	apply(message)
	return message.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, messageID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.messages, messageID)
	return nil
}
