package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campusconnect/internal/feed/store"
	identitymodels "campusconnect/internal/identity/models"
	identitystore "campusconnect/internal/identity/store"
	id "campusconnect/pkg/domain"
	dErrors "campusconnect/pkg/domain-errors"
)

type FeedServiceSuite struct {
	suite.Suite
	svc   *Service
	ctx   context.Context
	alice id.UserID
	bob   id.UserID
}

func (s *FeedServiceSuite) SetupTest() {
	users := identitystore.NewInMemory()
	s.ctx = context.Background()

	alice, err := identitymodels.NewUser(id.NewUserID(), "Alice Kumar", "CS21-001", "alice@campus.edu", "", "hash", time.Now())
	s.Require().NoError(err)
	bob, err := identitymodels.NewUser(id.NewUserID(), "Bob Verma", "CS21-002", "bob@campus.edu", "", "hash", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(users.Create(s.ctx, alice))
	s.Require().NoError(users.Create(s.ctx, bob))
	s.alice, s.bob = alice.ID, bob.ID

	s.svc = New(store.NewInMemory(), users)
}

func TestFeedServiceSuite(t *testing.T) {
	suite.Run(t, new(FeedServiceSuite))
}

func (s *FeedServiceSuite) TestCreatePost() {
	s.Run("publishes a text post", func() {
		post, err := s.svc.CreatePost(s.ctx, s.alice, "hello campus", "")
		s.Require().NoError(err)
		s.Equal(s.alice, post.Author)
		s.Equal("hello campus", post.Content)
	})

	s.Run("allows an image-only post", func() {
		post, err := s.svc.CreatePost(s.ctx, s.alice, "", "/uploads/123.png")
		s.Require().NoError(err)
		s.Equal("/uploads/123.png", post.ImageURL)
	})

	s.Run("rejects an empty post", func() {
		_, err := s.svc.CreatePost(s.ctx, s.alice, "   ", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *FeedServiceSuite) TestListPosts() {
	first, err := s.svc.CreatePost(s.ctx, s.alice, "first", "")
	s.Require().NoError(err)
	time.Sleep(time.Millisecond)
	second, err := s.svc.CreatePost(s.ctx, s.bob, "second", "")
	s.Require().NoError(err)

	s.Run("returns newest first with author profiles", func() {
		views, err := s.svc.ListPosts(s.ctx, s.alice)
		s.Require().NoError(err)
		s.Require().Len(views, 2)
		s.Equal(second.ID, views[0].ID)
		s.Equal(first.ID, views[1].ID)
		s.Require().NotNil(views[0].AuthorProfile)
		s.Equal("Bob Verma", views[0].AuthorProfile.Name)
	})

	s.Run("flags the caller's likes", func() {
		_, _, err := s.svc.ToggleLike(s.ctx, s.alice, second.ID)
		s.Require().NoError(err)

		views, err := s.svc.ListPosts(s.ctx, s.alice)
		s.Require().NoError(err)
		s.True(views[0].LikedByMe)
		s.False(views[1].LikedByMe)

		views, err = s.svc.ListPosts(s.ctx, s.bob)
		s.Require().NoError(err)
		s.False(views[0].LikedByMe)
	})
}

func (s *FeedServiceSuite) TestToggleLike() {
	post, err := s.svc.CreatePost(s.ctx, s.alice, "likeable", "")
	s.Require().NoError(err)

	s.Run("first toggle likes", func() {
		liked, count, err := s.svc.ToggleLike(s.ctx, s.bob, post.ID)
		s.Require().NoError(err)
		s.True(liked)
		s.Equal(1, count)
	})

	s.Run("second toggle unlikes", func() {
		liked, count, err := s.svc.ToggleLike(s.ctx, s.bob, post.ID)
		s.Require().NoError(err)
		s.False(liked)
		s.Equal(0, count)
	})

	s.Run("unknown post maps to not found", func() {
		_, _, err := s.svc.ToggleLike(s.ctx, s.bob, id.NewPostID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *FeedServiceSuite) TestAddComment() {
	post, err := s.svc.CreatePost(s.ctx, s.alice, "discuss", "")
	s.Require().NoError(err)

	s.Run("appends comments in order", func() {
		_, err := s.svc.AddComment(s.ctx, s.bob, post.ID, "first!")
		s.Require().NoError(err)
		updated, err := s.svc.AddComment(s.ctx, s.alice, post.ID, "thanks")
		s.Require().NoError(err)

		s.Require().Len(updated.Comments, 2)
		s.Equal(s.bob, updated.Comments[0].Author)
		s.Equal("first!", updated.Comments[0].Text)
		s.Equal(s.alice, updated.Comments[1].Author)
	})

	s.Run("rejects empty text", func() {
		_, err := s.svc.AddComment(s.ctx, s.bob, post.ID, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *FeedServiceSuite) TestDeletePost() {
	post, err := s.svc.CreatePost(s.ctx, s.alice, "ephemeral", "")
	s.Require().NoError(err)

	s.Run("refuses deletion by someone else", func() {
		err := s.svc.DeletePost(s.ctx, s.bob, post.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("lets the author delete", func() {
		s.Require().NoError(s.svc.DeletePost(s.ctx, s.alice, post.ID))

		views, err := s.svc.ListPosts(s.ctx, s.alice)
		s.Require().NoError(err)
		s.Empty(views)
	})

	s.Run("unknown post maps to not found", func() {
		err := s.svc.DeletePost(s.ctx, s.alice, post.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
