package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "campusconnect/internal/identity/models"
	identitystore "campusconnect/internal/identity/store"
	"campusconnect/internal/message/store"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

type MessageServiceSuite struct {
	suite.Suite
	svc   *Service
	ctx   context.Context
	alice id.UserID
	bob   id.UserID
	carol id.UserID
}

func (s *MessageServiceSuite) SetupTest() {
	users := identitystore.NewInMemory()
	s.ctx = context.Background()

	for _, spec := range []struct {
		name, regNo string
		target      *id.UserID
	}{
		{"Alice Kumar", "CS21-001", &s.alice},
		{"Bob Verma", "CS21-002", &s.bob},
		{"Carol Singh", "DS22-003", &s.carol},
	} {
		user, err := identitymodels.NewUser(id.NewUserID(), spec.name, spec.regNo, spec.regNo+"@campus.edu", "", "hash", time.Now())
		s.Require().NoError(err)
		s.Require().NoError(users.Create(s.ctx, user))
		*spec.target = user.ID
	}

	s.svc = New(store.NewInMemory(), users)
}

func TestMessageServiceSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceSuite))
}

func (s *MessageServiceSuite) TestSend() {
	s.Run("delivers a message", func() {
		message, err := s.svc.Send(s.ctx, s.alice, s.bob, "hey bob")
		s.Require().NoError(err)
		s.Equal(s.alice, message.From)
		s.Equal(s.bob, message.To)
		s.Equal("hey bob", message.Text)
	})

	s.Run("rejects messaging yourself", func() {
		_, err := s.svc.Send(s.ctx, s.alice, s.alice, "hi me")
		s.True(dErrors.HasCode(err, dErrors.CodeSelfReference))
	})

	s.Run("rejects an unknown peer", func() {
		_, err := s.svc.Send(s.ctx, s.alice, id.NewUserID(), "hello?")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects empty text", func() {
		_, err := s.svc.Send(s.ctx, s.alice, s.bob, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *MessageServiceSuite) TestConversation() {
	_, err := s.svc.Send(s.ctx, s.alice, s.bob, "hi bob")
	s.Require().NoError(err)
	_, err = s.svc.Send(s.ctx, s.bob, s.alice, "hi alice")
	s.Require().NoError(err)
	_, err = s.svc.Send(s.ctx, s.alice, s.carol, "hi carol")
	s.Require().NoError(err)

	s.Run("returns both directions, oldest first, flagged per caller", func() {
		thread, err := s.svc.Conversation(s.ctx, s.alice, s.bob)
		s.Require().NoError(err)
		s.Require().Len(thread, 2)
		s.Equal("hi bob", thread[0].Text)
		s.True(thread[0].IsMine)
		s.False(thread[1].IsMine)
	})

	s.Run("the other side sees the flags inverted", func() {
		thread, err := s.svc.Conversation(s.ctx, s.bob, s.alice)
		s.Require().NoError(err)
		s.Require().Len(thread, 2)
		s.False(thread[0].IsMine)
		s.True(thread[1].IsMine)
	})

	s.Run("excludes other conversations", func() {
		thread, err := s.svc.Conversation(s.ctx, s.alice, s.carol)
		s.Require().NoError(err)
		s.Require().Len(thread, 1)
		s.Equal("hi carol", thread[0].Text)
	})
}

func (s *MessageServiceSuite) TestReact() {
	message, err := s.svc.Send(s.ctx, s.alice, s.bob, "react to this")
	s.Require().NoError(err)

	s.Run("participant can react", func() {
		updated, err := s.svc.React(s.ctx, s.bob, message.ID, "👍")
		s.Require().NoError(err)
		s.Require().Len(updated.Reactions, 1)
		s.Equal(s.bob, updated.Reactions[0].By)
		s.Equal("👍", updated.Reactions[0].Emoji)
	})

	s.Run("a different emoji replaces the reaction", func() {
		updated, err := s.svc.React(s.ctx, s.bob, message.ID, "🎉")
		s.Require().NoError(err)
		s.Require().Len(updated.Reactions, 1)
		s.Equal("🎉", updated.Reactions[0].Emoji)
	})

	s.Run("the same emoji clears it", func() {
		updated, err := s.svc.React(s.ctx, s.bob, message.ID, "🎉")
		s.Require().NoError(err)
		s.Empty(updated.Reactions)
	})

	s.Run("outsiders are refused", func() {
		_, err := s.svc.React(s.ctx, s.carol, message.ID, "👀")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("empty emoji is rejected", func() {
		_, err := s.svc.React(s.ctx, s.alice, message.ID, " ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *MessageServiceSuite) TestDelete() {
	message, err := s.svc.Send(s.ctx, s.alice, s.bob, "regrets")
	s.Require().NoError(err)

	s.Run("the recipient cannot delete", func() {
		err := s.svc.Delete(s.ctx, s.bob, message.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("the sender can delete", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, s.alice, message.ID))

		thread, err := s.svc.Conversation(s.ctx, s.alice, s.bob)
		s.Require().NoError(err)
		s.Empty(thread)
	})

	s.Run("unknown message maps to not found", func() {
		err := s.svc.Delete(s.ctx, s.alice, message.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
