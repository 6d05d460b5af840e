package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campusconnect/internal/identity/models"
	id "campusconnect/pkg/domain"
	"campusconnect/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(name, regNo string) *models.User {
	user, err := models.NewUser(id.NewUserID(), name, regNo, regNo+"@campus.edu", "9900000000", "hash", time.Now())
	s.Require().NoError(err)
	return user
}

func (s *UserStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds user by ID and regNo", func() {
		user := s.newUser("Asha Rao", "CS21-001")
		s.Require().NoError(s.store.Create(s.ctx, user))

		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user.Name, found.Name)

		found, err = s.store.FindByRegNo(s.ctx, "cs21-001")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate registration number case-insensitively", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newUser("First", "DS22-042")))
		err := s.store.Create(s.ctx, s.newUser("Second", "ds22-042"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *UserStoreSuite) TestSearch() {
	alice := s.newUser("Alice Kumar", "CS21-010")
	bob := s.newUser("Bob Verma", "DS22-020")
	s.Require().NoError(s.store.Create(s.ctx, alice))
	s.Require().NoError(s.store.Create(s.ctx, bob))

	s.Run("excludes the requesting user", func() {
		results, err := s.store.Search(s.ctx, alice.ID, "")
		s.Require().NoError(err)
		s.Require().Len(results, 1)
		s.Equal(bob.ID, results[0].ID)
	})

	s.Run("filters case-insensitively over name, regNo, email", func() {
		results, err := s.store.Search(s.ctx, id.NewUserID(), "alice")
		s.Require().NoError(err)
		s.Require().Len(results, 1)
		s.Equal(alice.ID, results[0].ID)

		results, err = s.store.Search(s.ctx, id.NewUserID(), "ds22")
		s.Require().NoError(err)
		s.Require().Len(results, 1)
		s.Equal(bob.ID, results[0].ID)
	})

	s.Run("returns empty slice when nothing matches", func() {
		results, err := s.store.Search(s.ctx, alice.ID, "zzz")
		s.Require().NoError(err)
		s.Empty(results)
	})
}

func (s *UserStoreSuite) TestFindSummaries() {
	alice := s.newUser("Alice Kumar", "CS21-010")
	bob := s.newUser("Bob Verma", "DS22-020")
	s.Require().NoError(s.store.Create(s.ctx, alice))
	s.Require().NoError(s.store.Create(s.ctx, bob))

	s.Run("preserves reference order", func() {
		summaries, err := s.store.FindSummaries(s.ctx, []id.UserID{bob.ID, alice.ID})
		s.Require().NoError(err)
		s.Require().Len(summaries, 2)
		s.Equal(bob.ID, summaries[0].ID)
		s.Equal(alice.ID, summaries[1].ID)
	})

	s.Run("skips unknown references", func() {
		summaries, err := s.store.FindSummaries(s.ctx, []id.UserID{id.NewUserID(), alice.ID})
		s.Require().NoError(err)
		s.Require().Len(summaries, 1)
		s.Equal(alice.ID, summaries[0].ID)
	})
}

func (s *UserStoreSuite) TestExecute() {
	user := s.newUser("Asha Rao", "CS21-001")
	peer := s.newUser("Bob Verma", "DS22-020")
	s.Require().NoError(s.store.Create(s.ctx, user))
	s.Require().NoError(s.store.Create(s.ctx, peer))

	s.Run("applies mutation when validation passes", func() {
		_, err := s.store.Execute(s.ctx, user.ID,
			func(u *models.User) error { return nil },
			func(u *models.User) { u.ApplyIncomingRequest(peer.ID) },
		)
		s.Require().NoError(err)

		found, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.True(found.HasRequestFrom(peer.ID))
	})

	s.Run("writes nothing when validation fails", func() {
		wantErr := sentinel.ErrInvalidState
		_, err := s.store.Execute(s.ctx, peer.ID,
			func(u *models.User) error { return wantErr },
			func(u *models.User) { u.ApplyIncomingRequest(user.ID) },
		)
		s.Require().ErrorIs(err, wantErr)

		found, err := s.store.FindByID(s.ctx, peer.ID)
		s.Require().NoError(err)
		s.False(found.HasRequestFrom(user.ID))
	})

	s.Run("returns ErrNotFound for unknown user", func() {
		_, err := s.store.Execute(s.ctx, id.NewUserID(),
			func(u *models.User) error { return nil },
			func(u *models.User) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *UserStoreSuite) TestExecutePair() {
	alice := s.newUser("Alice Kumar", "CS21-010")
	bob := s.newUser("Bob Verma", "DS22-020")
	s.Require().NoError(s.store.Create(s.ctx, alice))
	s.Require().NoError(s.store.Create(s.ctx, bob))

	s.Run("applies both mutations as a unit", func() {
		err := s.store.ExecutePair(s.ctx, alice.ID, bob.ID,
			func(a, b *models.User) error { return nil },
			func(a, b *models.User) {
				a.ApplyConnection(b.ID)
				b.ApplyConnection(a.ID)
			},
		)
		s.Require().NoError(err)

		foundA, err := s.store.FindByID(s.ctx, alice.ID)
		s.Require().NoError(err)
		foundB, err := s.store.FindByID(s.ctx, bob.ID)
		s.Require().NoError(err)
		s.True(foundA.IsConnectedTo(bob.ID))
		s.True(foundB.IsConnectedTo(alice.ID))
	})

	s.Run("leaves both records untouched when validation fails", func() {
		carol := s.newUser("Carol Iyer", "CS21-030")
		s.Require().NoError(s.store.Create(s.ctx, carol))

		err := s.store.ExecutePair(s.ctx, alice.ID, carol.ID,
			func(a, c *models.User) error { return sentinel.ErrInvalidState },
			func(a, c *models.User) {
				a.ApplyConnection(c.ID)
				c.ApplyConnection(a.ID)
			},
		)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		foundA, err := s.store.FindByID(s.ctx, alice.ID)
		s.Require().NoError(err)
		foundC, err := s.store.FindByID(s.ctx, carol.ID)
		s.Require().NoError(err)
		s.False(foundA.IsConnectedTo(carol.ID))
		s.False(foundC.IsConnectedTo(alice.ID))
	})

	s.Run("returns ErrNotFound when either record is missing", func() {
		err := s.store.ExecutePair(s.ctx, alice.ID, id.NewUserID(),
			func(a, b *models.User) error { return nil },
			func(a, b *models.User) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
