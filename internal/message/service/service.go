package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"campusconnect/internal/audit"
	identitystore "campusconnect/internal/identity/store"
	"campusconnect/internal/message/models"
	"campusconnect/internal/message/store"
	"campusconnect/internal/platform/metrics"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/platform/sentinel"
	"campusconnect/pkg/requestcontext"
)

var tracer = otel.Tracer("campusconnect/internal/message")

// AuditPublisher records messaging activity.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service runs direct messaging between members.
type Service struct {
	messages store.MessageStore
	users    identitystore.UserStore
	logger   *slog.Logger
	auditor  AuditPublisher
	metrics  *metrics.Metrics
}

func New(messages store.MessageStore, users identitystore.UserStore, opts ...Option) *Service {
	s := &Service{messages: messages, users: users, logger: slog.Default()}
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// View is a message annotated for one side of the conversation.
type View struct {
	models.Message
	IsMine bool `json:"is_mine"`
}

// Send delivers a message from me to peer. The peer must exist.
func (s *Service) Send(ctx context.Context, me, peer id.UserID, text string) (*models.Message, error) {
	ctx, span := tracer.Start(ctx, "message.Send")
	defer span.End()

	if _, err := s.users.FindByID(ctx, peer); err != nil {
		return nil, s.mapStoreError(err, "user not found")
	}

	message, err := models.NewMessage(id.NewMessageID(), me, peer, text, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to send message")
	}

	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionMessageSent, Subject: peer.String()})
	s.metrics.IncrementMessagesSent()
	return message, nil
}

// Conversation returns the full thread between me and peer, oldest first,
// with each message flagged from the caller's perspective.
func (s *Service) Conversation(ctx context.Context, me, peer id.UserID) ([]View, error) {
	ctx, span := tracer.Start(ctx, "message.Conversation")
	defer span.End()

	if _, err := s.users.FindByID(ctx, peer); err != nil {
		return nil, s.mapStoreError(err, "user not found")
	}

	messages, err := s.messages.Conversation(ctx, me, peer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load conversation")
	}

	views := make([]View, 0, len(messages))
	for _, message := range messages {
		views = append(views, View{Message: *message, IsMine: message.From == me})
	}
	return views, nil
}

// React sets the caller's emoji reaction on a message. Participants only;
// repeating the same emoji clears it.
func (s *Service) React(ctx context.Context, me id.UserID, messageID id.MessageID, emoji string) (*models.Message, error) {
	ctx, span := tracer.Start(ctx, "message.React")
	defer span.End()

	message, err := s.messages.Execute(ctx, messageID,
		func(m *models.Message) error { return m.CanReactBy(me, emoji) },
		func(m *models.Message) { m.ApplyReaction(me, emoji) })
	if err != nil {
		return nil, s.mapStoreError(err, "message not found")
	}
	return message, nil
}

// Delete removes a message. Only the sender may delete it.
func (s *Service) Delete(ctx context.Context, me id.UserID, messageID id.MessageID) error {
	ctx, span := tracer.Start(ctx, "message.Delete")
	defer span.End()

	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return s.mapStoreError(err, "message not found")
	}
	if err := message.CanDeleteBy(me); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return s.mapStoreError(err, "message not found")
	}

	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionMessageDeleted, Subject: messageID.String()})
	return nil
}

func (s *Service) mapStoreError(err error, notFoundMsg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, event)
	}
}
