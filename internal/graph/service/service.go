// Package service implements the connection-request engine. Every mutation
// touches two user records and commits through the store's ExecutePair, so
// the symmetric graph invariants hold after every operation regardless of
// concurrent callers.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campusconnect/internal/audit"
	"campusconnect/internal/identity/models"
	"campusconnect/internal/identity/store"
	"campusconnect/internal/platform/metrics"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
	"campusconnect/pkg/platform/sentinel"
	"campusconnect/pkg/requestcontext"
)

var tracer = otel.Tracer("campusconnect/internal/graph")

// AuditPublisher records graph transitions for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service exposes the social-graph operations.
type Service struct {
	users   store.UserStore
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

func New(users store.UserStore, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
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

// SendRequest records a pending connection request from me to recipient.
// The recipient gains an incoming entry and the sender an outgoing one in a
// single commit. A pending request in the opposite direction does not block
// the send: both directions may be pending at once, and whichever side
// accepts first resolves the pair.
func (s *Service) SendRequest(ctx context.Context, me, recipient id.UserID) error {
	ctx, span := tracer.Start(ctx, "graph.SendRequest", trace.WithAttributes(
		attribute.String("user.id", me.String()),
		attribute.String("peer.id", recipient.String()),
	))
	defer span.End()

	if me == recipient {
		return dErrors.New(dErrors.CodeSelfReference, "cannot send a connection request to yourself")
	}

	err := s.users.ExecutePair(ctx, me, recipient,
		func(sender, to *models.User) error {
			return to.CanReceiveRequestFrom(sender.ID)
		},
		func(sender, to *models.User) {
			to.ApplyIncomingRequest(sender.ID)
			sender.ApplyOutgoingRequest(to.ID)
		})
	if err != nil {
		return s.mapStoreError(ctx, err, "send request")
	}

	s.logger.InfoContext(ctx, "connection request sent",
		"user_id", me.String(),
		"recipient_id", recipient.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionRequestSent, Subject: recipient.String()})
	s.metrics.IncrementRequestsSent()
	return nil
}

// AcceptRequest resolves a pending request from requester into a confirmed
// connection. Both records change as one logical unit: each side gains the
// other as a connection and every pending entry between the pair, in either
// direction, is cleared. When both directions were pending the first accept
// wins and the second accept fails with no pending request.
func (s *Service) AcceptRequest(ctx context.Context, me, requester id.UserID) error {
	ctx, span := tracer.Start(ctx, "graph.AcceptRequest", trace.WithAttributes(
		attribute.String("user.id", me.String()),
		attribute.String("peer.id", requester.String()),
	))
	defer span.End()

	if me == requester {
		return dErrors.New(dErrors.CodeNoSuchRequest, "no request from this user")
	}

	err := s.users.ExecutePair(ctx, me, requester,
		func(acceptor, _ *models.User) error {
			return acceptor.CanAcceptRequestFrom(requester)
		},
		func(acceptor, from *models.User) {
			acceptor.ApplyConnection(from.ID)
			from.ApplyConnection(acceptor.ID)
		})
	if err != nil {
		return s.mapStoreError(ctx, err, "accept request")
	}

	s.logger.InfoContext(ctx, "connection request accepted",
		"user_id", me.String(),
		"requester_id", requester.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionRequestAccepted, Subject: requester.String()})
	s.metrics.IncrementRequestsAccepted()
	return nil
}

// RejectRequest drops a pending request from requester without creating a
// connection. Only the rejected direction is cleared; a pending request the
// rejecting user sent to the requester, if any, survives.
func (s *Service) RejectRequest(ctx context.Context, me, requester id.UserID) error {
	ctx, span := tracer.Start(ctx, "graph.RejectRequest", trace.WithAttributes(
		attribute.String("user.id", me.String()),
		attribute.String("peer.id", requester.String()),
	))
	defer span.End()

	if me == requester {
		return dErrors.New(dErrors.CodeNoSuchRequest, "no request from this user")
	}

	err := s.users.ExecutePair(ctx, me, requester,
		func(rejector, _ *models.User) error {
			return rejector.CanAcceptRequestFrom(requester)
		},
		func(rejector, from *models.User) {
			rejector.ApplyIncomingRemoval(from.ID)
			from.ApplyOutgoingRemoval(rejector.ID)
		})
	if err != nil {
		return s.mapStoreError(ctx, err, "reject request")
	}

	s.logger.InfoContext(ctx, "connection request rejected",
		"user_id", me.String(),
		"requester_id", requester.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Actor: me, Action: audit.ActionRequestRejected, Subject: requester.String()})
	s.metrics.IncrementRequestsRejected()
	return nil
}

// ListIncoming returns the users with a pending request to me, in the order
// the requests arrived.
func (s *Service) ListIncoming(ctx context.Context, me id.UserID) ([]models.Summary, error) {
	ctx, span := tracer.Start(ctx, "graph.ListIncoming")
	defer span.End()
	return s.resolveRefs(ctx, me, func(u *models.User) []id.UserID { return u.Requests })
}

// ListConnections returns my confirmed connections in the order they were
// established.
func (s *Service) ListConnections(ctx context.Context, me id.UserID) ([]models.Summary, error) {
	ctx, span := tracer.Start(ctx, "graph.ListConnections")
	defer span.End()
	return s.resolveRefs(ctx, me, func(u *models.User) []id.UserID { return u.Connections })
}

// ListOutgoing returns the users I have a pending request to, in send order.
func (s *Service) ListOutgoing(ctx context.Context, me id.UserID) ([]models.Summary, error) {
	ctx, span := tracer.Start(ctx, "graph.ListOutgoing")
	defer span.End()
	return s.resolveRefs(ctx, me, func(u *models.User) []id.UserID { return u.Outgoing })
}

// ListCandidates returns everyone except me, optionally filtered by a
// case-insensitive substring over name, registration number, and email.
func (s *Service) ListCandidates(ctx context.Context, me id.UserID, query string) ([]models.Summary, error) {
	ctx, span := tracer.Start(ctx, "graph.ListCandidates")
	defer span.End()

	summaries, err := s.users.Search(ctx, me, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list candidates")
	}
	return summaries, nil
}

func (s *Service) resolveRefs(ctx context.Context, me id.UserID, refs func(u *models.User) []id.UserID) ([]models.Summary, error) {
	user, err := s.users.FindByID(ctx, me)
	if err != nil {
		return nil, s.mapStoreError(ctx, err, "load user")
	}
	summaries, err := s.users.FindSummaries(ctx, refs(user))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to resolve users")
	}
	return summaries, nil
}

// mapStoreError translates store facts into the API error taxonomy. Domain
// errors raised by the validate callbacks pass through untouched.
func (s *Service) mapStoreError(ctx context.Context, err error, op string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	s.logger.ErrorContext(ctx, "graph store failure",
		"op", op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "store unavailable")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, event)
	}
}
