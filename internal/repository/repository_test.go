package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/stepflow-api/internal/database"
	"github.com/yukikurage/stepflow-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	store Store
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(database.Migrate(suite.db))

	suite.ctx = context.Background()
	suite.store = NewStore(suite.db)
}

func (suite *StoreTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *StoreTestSuite) createProject() *models.Project {
	project := &models.Project{OwnerID: "owner", Name: "Launch", Color: "#3b82f6"}
	suite.Require().NoError(suite.store.Projects().Create(suite.ctx, project))
	return project
}

func (suite *StoreTestSuite) TestTransaction_RollsBackOnError() {
	project := suite.createProject()
	boom := errors.New("boom")

	err := suite.store.Transaction(suite.ctx, func(tx Store) error {
		if err := tx.Steps().Create(suite.ctx, &models.Step{ProjectID: project.ID, Title: "A"}); err != nil {
			return err
		}
		return boom
	})
	suite.ErrorIs(err, boom)

	count, err := suite.store.Steps().CountByProject(suite.ctx, project.ID)
	suite.Require().NoError(err)
	suite.Zero(count)
}

func (suite *StoreTestSuite) TestSteps_OrderedQueriesAndReset() {
	project := suite.createProject()
	for i, title := range []string{"C", "A", "B"} {
		order := map[string]int{"A": 0, "B": 1, "C": 2}[title]
		step := &models.Step{ProjectID: project.ID, Title: title, Order: order, IsCompleted: i != 1, IsUnlocked: true}
		suite.Require().NoError(suite.store.Steps().Create(suite.ctx, step))
	}

	steps, err := suite.store.Steps().ListByProject(suite.ctx, project.ID)
	suite.Require().NoError(err)
	suite.Require().Len(steps, 3)
	suite.Equal([]string{"A", "B", "C"}, []string{steps[0].Title, steps[1].Title, steps[2].Title})

	second, err := suite.store.Steps().FindByOrder(suite.ctx, project.ID, 1)
	suite.Require().NoError(err)
	suite.Equal("B", second.Title)

	_, err = suite.store.Steps().FindByOrder(suite.ctx, project.ID, 7)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	suite.Require().NoError(suite.store.Steps().ResetAfter(suite.ctx, project.ID, 0))
	steps, err = suite.store.Steps().ListByProject(suite.ctx, project.ID)
	suite.Require().NoError(err)
	suite.True(steps[0].IsUnlocked)
	for _, step := range steps[1:] {
		suite.False(step.IsCompleted)
		suite.False(step.IsUnlocked)
	}
}

func (suite *StoreTestSuite) TestMembers_AddIfAbsentIsIdempotent() {
	project := suite.createProject()
	member := func(p models.Permission) *models.ProjectMember {
		return &models.ProjectMember{ProjectID: project.ID, UserID: "u1", Permission: p, AddedAt: time.Now(), AddedBy: "owner"}
	}

	inserted, err := suite.store.Members().AddIfAbsent(suite.ctx, member(models.PermissionView))
	suite.Require().NoError(err)
	suite.True(inserted)

	inserted, err = suite.store.Members().AddIfAbsent(suite.ctx, member(models.PermissionModify))
	suite.Require().NoError(err)
	suite.False(inserted)

	members, err := suite.store.Members().ListByProject(suite.ctx, project.ID)
	suite.Require().NoError(err)
	suite.Require().Len(members, 1)
	suite.Equal(models.PermissionView, members[0].Permission)
}

func (suite *StoreTestSuite) TestInvitations_TransitionOnlyFromPending() {
	project := suite.createProject()
	invitation := &models.Invitation{
		ProjectID:  project.ID,
		InvitedBy:  "owner",
		Permission: models.PermissionView,
		Token:      "tok",
		ExpiresAt:  time.Now().Add(time.Hour),
		Status:     models.InvitationPending,
	}
	suite.Require().NoError(suite.store.Invitations().Create(suite.ctx, invitation))

	changed, err := suite.store.Invitations().TransitionFromPending(suite.ctx, invitation.ID, InvitationTransition{Status: models.InvitationDeclined})
	suite.Require().NoError(err)
	suite.True(changed)

	changed, err = suite.store.Invitations().TransitionFromPending(suite.ctx, invitation.ID, InvitationTransition{Status: models.InvitationAccepted})
	suite.Require().NoError(err)
	suite.False(changed)

	stored, err := suite.store.Invitations().FindByToken(suite.ctx, "tok")
	suite.Require().NoError(err)
	suite.Equal(models.InvitationDeclined, stored.Status)
}

func (suite *StoreTestSuite) TestUsers_Upsert() {
	suite.Require().NoError(suite.store.Users().Upsert(suite.ctx, &models.User{ID: "u1", Name: "Old"}))
	suite.Require().NoError(suite.store.Users().Upsert(suite.ctx, &models.User{ID: "u1", Name: "New", Email: "n@example.com"}))

	users, err := suite.store.Users().FindByIDs(suite.ctx, []string{"u1", "u2"})
	suite.Require().NoError(err)
	suite.Require().Len(users, 1)
	suite.Equal("New", users[0].Name)
	suite.Equal("n@example.com", users[0].Email)
}

func TestEmptyIDListsSkipQueries(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	projects, err := store.Projects().FindByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, projects)

	steps, err := store.Steps().ListByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, steps)

	subtasks, err := store.Subtasks().ListByStepIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, subtasks)

	require.NoError(t, store.Steps().DeleteByIDs(ctx, nil))
	require.NoError(t, store.Subtasks().DeleteByStepIDs(ctx, nil))
}
