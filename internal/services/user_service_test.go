package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	serviceSuite
	users *UserService
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.users = NewUserService(s.store)
}

func (s *UserServiceTestSuite) TestSyncCreatesThenRefreshes() {
	user, err := s.users.Sync(s.ctx, SyncUserInput{ID: ownerID, Name: " Ada ", Email: "ada@example.com"})
	s.Require().NoError(err)
	s.Equal("Ada", user.Name)

	user, err = s.users.Sync(s.ctx, SyncUserInput{ID: ownerID, Name: "Ada L.", Email: "ada@example.com"})
	s.Require().NoError(err)
	s.Equal("Ada L.", user.Name)

	got, err := s.users.Get(s.ctx, ownerID)
	s.Require().NoError(err)
	s.Equal("Ada L.", got.Name)
}

func (s *UserServiceTestSuite) TestSyncRejectsBadEmail() {
	_, err := s.users.Sync(s.ctx, SyncUserInput{ID: ownerID, Name: "Ada", Email: "not-an-email"})
	s.ErrorIs(err, ErrValidation)
}

func (s *UserServiceTestSuite) TestGet() {
	_, err := s.users.Get(s.ctx, "")
	s.ErrorIs(err, ErrNotAuthenticated)

	_, err = s.users.Get(s.ctx, strangerID)
	s.ErrorIs(err, ErrUserNotFound)
	s.ErrorIs(err, ErrNotFound)
}
