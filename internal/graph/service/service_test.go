package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campusconnect/internal/audit"
	"campusconnect/internal/identity/models"
	"campusconnect/internal/identity/store"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

type GraphServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	svc     *Service
	auditor *recordingAuditor
	ctx     context.Context

	alice id.UserID
	bob   id.UserID
	carol id.UserID
}

func (s *GraphServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.auditor = &recordingAuditor{}
	s.svc = New(s.store, WithAuditPublisher(s.auditor))
	s.ctx = context.Background()

	s.alice = s.addUser("Alice Kumar", "CS21-001")
	s.bob = s.addUser("Bob Verma", "CS21-002")
	s.carol = s.addUser("Carol Singh", "DS22-003")
}

func TestGraphServiceSuite(t *testing.T) {
	suite.Run(t, new(GraphServiceSuite))
}

func (s *GraphServiceSuite) addUser(name, regNo string) id.UserID {
	user, err := models.NewUser(id.NewUserID(), name, regNo, regNo+"@campus.edu", "9900000000", "hash", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, user))
	return user.ID
}

func (s *GraphServiceSuite) user(userID id.UserID) *models.User {
	user, err := s.store.FindByID(s.ctx, userID)
	s.Require().NoError(err)
	return user
}

func (s *GraphServiceSuite) TestSendRequest() {
	s.Run("records pending state on both sides", func() {
		s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))

		s.True(s.user(s.bob).HasRequestFrom(s.alice))
		s.True(s.user(s.alice).HasRequestTo(s.bob))
		s.False(s.user(s.alice).IsConnectedTo(s.bob))
	})

	s.Run("rejects self reference", func() {
		err := s.svc.SendRequest(s.ctx, s.alice, s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeSelfReference))
	})

	s.Run("rejects unknown recipient", func() {
		err := s.svc.SendRequest(s.ctx, s.alice, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects duplicate pending in the same direction", func() {
		err := s.svc.SendRequest(s.ctx, s.alice, s.bob)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateRequest))

		s.Len(s.user(s.bob).Requests, 1)
		s.Len(s.user(s.alice).Outgoing, 1)
	})

	s.Run("allows pending in both directions at once", func() {
		s.Require().NoError(s.svc.SendRequest(s.ctx, s.bob, s.alice))

		s.True(s.user(s.alice).HasRequestFrom(s.bob))
		s.True(s.user(s.bob).HasRequestFrom(s.alice))
	})

	s.Run("rejects send when already connected", func() {
		s.Require().NoError(s.svc.AcceptRequest(s.ctx, s.bob, s.alice))

		err := s.svc.SendRequest(s.ctx, s.alice, s.bob)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyConnected))
	})
}

func (s *GraphServiceSuite) TestAcceptRequest() {
	s.Run("connects both sides and clears pending state", func() {
		s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))
		s.Require().NoError(s.svc.AcceptRequest(s.ctx, s.bob, s.alice))

		bob := s.user(s.bob)
		alice := s.user(s.alice)
		s.True(bob.IsConnectedTo(s.alice))
		s.True(alice.IsConnectedTo(s.bob))
		s.Empty(bob.Requests)
		s.Empty(alice.Outgoing)
	})

	s.Run("fails without a pending request", func() {
		err := s.svc.AcceptRequest(s.ctx, s.alice, s.carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNoSuchRequest))
		s.False(s.user(s.alice).IsConnectedTo(s.carol))
	})

	s.Run("fails for self", func() {
		err := s.svc.AcceptRequest(s.ctx, s.alice, s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeNoSuchRequest))
	})

	s.Run("fails for unknown requester", func() {
		err := s.svc.AcceptRequest(s.ctx, s.alice, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("failure leaves both records untouched", func() {
		before := s.user(s.carol)
		err := s.svc.AcceptRequest(s.ctx, s.carol, s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeNoSuchRequest))

		after := s.user(s.carol)
		s.Equal(before.Connections, after.Connections)
		s.Equal(before.Requests, after.Requests)
		s.Equal(before.Outgoing, after.Outgoing)
	})
}

func (s *GraphServiceSuite) TestAcceptWithBidirectionalPending() {
	s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))
	s.Require().NoError(s.svc.SendRequest(s.ctx, s.bob, s.alice))

	s.Run("first accept wins and clears both directions", func() {
		s.Require().NoError(s.svc.AcceptRequest(s.ctx, s.bob, s.alice))

		alice := s.user(s.alice)
		bob := s.user(s.bob)
		s.True(alice.IsConnectedTo(s.bob))
		s.True(bob.IsConnectedTo(s.alice))
		s.Empty(alice.Requests)
		s.Empty(alice.Outgoing)
		s.Empty(bob.Requests)
		s.Empty(bob.Outgoing)
	})

	s.Run("second accept finds nothing pending", func() {
		err := s.svc.AcceptRequest(s.ctx, s.alice, s.bob)
		s.True(dErrors.HasCode(err, dErrors.CodeNoSuchRequest))

		s.Len(s.user(s.alice).Connections, 1)
		s.Len(s.user(s.bob).Connections, 1)
	})
}

func (s *GraphServiceSuite) TestRejectRequest() {
	s.Run("clears pending state without connecting", func() {
		s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))
		s.Require().NoError(s.svc.RejectRequest(s.ctx, s.bob, s.alice))

		bob := s.user(s.bob)
		alice := s.user(s.alice)
		s.False(bob.IsConnectedTo(s.alice))
		s.Empty(bob.Requests)
		s.Empty(alice.Outgoing)
	})

	s.Run("allows a fresh request after rejection", func() {
		s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))
		s.True(s.user(s.bob).HasRequestFrom(s.alice))
	})

	s.Run("fails without a pending request", func() {
		err := s.svc.RejectRequest(s.ctx, s.alice, s.carol)
		s.True(dErrors.HasCode(err, dErrors.CodeNoSuchRequest))
	})

	s.Run("keeps the reverse pending request intact", func() {
		s.Require().NoError(s.svc.SendRequest(s.ctx, s.bob, s.alice))
		s.Require().NoError(s.svc.RejectRequest(s.ctx, s.bob, s.alice))

		s.False(s.user(s.bob).HasRequestFrom(s.alice))
		s.True(s.user(s.alice).HasRequestFrom(s.bob))
		s.True(s.user(s.bob).HasRequestTo(s.alice))
	})
}

func (s *GraphServiceSuite) TestListings() {
	s.Require().NoError(s.svc.SendRequest(s.ctx, s.bob, s.alice))
	s.Require().NoError(s.svc.SendRequest(s.ctx, s.carol, s.alice))

	s.Run("incoming preserves arrival order", func() {
		incoming, err := s.svc.ListIncoming(s.ctx, s.alice)
		s.Require().NoError(err)
		s.Require().Len(incoming, 2)
		s.Equal(s.bob, incoming[0].ID)
		s.Equal(s.carol, incoming[1].ID)
	})

	s.Run("listing is stable across calls", func() {
		first, err := s.svc.ListIncoming(s.ctx, s.alice)
		s.Require().NoError(err)
		second, err := s.svc.ListIncoming(s.ctx, s.alice)
		s.Require().NoError(err)
		s.Equal(first, second)
	})

	s.Run("outgoing mirrors the senders' views", func() {
		outgoing, err := s.svc.ListOutgoing(s.ctx, s.bob)
		s.Require().NoError(err)
		s.Require().Len(outgoing, 1)
		s.Equal(s.alice, outgoing[0].ID)
	})

	s.Run("connections appear for both sides after accept", func() {
		s.Require().NoError(s.svc.AcceptRequest(s.ctx, s.alice, s.bob))

		mine, err := s.svc.ListConnections(s.ctx, s.alice)
		s.Require().NoError(err)
		theirs, err := s.svc.ListConnections(s.ctx, s.bob)
		s.Require().NoError(err)
		s.Require().Len(mine, 1)
		s.Require().Len(theirs, 1)
		s.Equal(s.bob, mine[0].ID)
		s.Equal(s.alice, theirs[0].ID)
	})

	s.Run("unknown user fails with not found", func() {
		_, err := s.svc.ListIncoming(s.ctx, id.NewUserID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GraphServiceSuite) TestListCandidates() {
	s.Run("excludes the caller", func() {
		candidates, err := s.svc.ListCandidates(s.ctx, s.alice, "")
		s.Require().NoError(err)
		s.Require().Len(candidates, 2)
		for _, c := range candidates {
			s.NotEqual(s.alice, c.ID)
		}
	})

	s.Run("filters by substring", func() {
		candidates, err := s.svc.ListCandidates(s.ctx, s.alice, "ds22")
		s.Require().NoError(err)
		s.Require().Len(candidates, 1)
		s.Equal(s.carol, candidates[0].ID)
	})
}

// Mirrors the lifecycle a client walks through: browse, request, accept,
// then verify both views agree.
func (s *GraphServiceSuite) TestRequestLifecycle() {
	candidates, err := s.svc.ListCandidates(s.ctx, s.alice, "")
	s.Require().NoError(err)
	s.Require().Len(candidates, 2)

	s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))

	incoming, err := s.svc.ListIncoming(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Len(incoming, 1)
	s.Equal(s.alice, incoming[0].ID)

	s.Require().NoError(s.svc.AcceptRequest(s.ctx, s.bob, s.alice))

	incoming, err = s.svc.ListIncoming(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Empty(incoming)

	for _, userID := range []id.UserID{s.alice, s.bob} {
		connections, err := s.svc.ListConnections(s.ctx, userID)
		s.Require().NoError(err)
		s.Len(connections, 1)
	}
}

func (s *GraphServiceSuite) TestRejectionLifecycle() {
	s.Require().NoError(s.svc.SendRequest(s.ctx, s.carol, s.bob))
	s.Require().NoError(s.svc.RejectRequest(s.ctx, s.bob, s.carol))

	incoming, err := s.svc.ListIncoming(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Empty(incoming)

	connections, err := s.svc.ListConnections(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Empty(connections)

	outgoing, err := s.svc.ListOutgoing(s.ctx, s.carol)
	s.Require().NoError(err)
	s.Empty(outgoing)
}

func (s *GraphServiceSuite) TestAuditTrail() {
	s.Require().NoError(s.svc.SendRequest(s.ctx, s.alice, s.bob))
	s.Require().NoError(s.svc.AcceptRequest(s.ctx, s.bob, s.alice))

	s.Require().Len(s.auditor.events, 2)
	s.Equal(audit.ActionRequestSent, s.auditor.events[0].Action)
	s.Equal(s.alice, s.auditor.events[0].Actor)
	s.Equal(audit.ActionRequestAccepted, s.auditor.events[1].Action)
	s.Equal(s.bob, s.auditor.events[1].Actor)
}
