package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/stepflow-api/internal/database"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ownerID    = "user-owner"
	viewerID   = "user-viewer"
	modifierID = "user-modifier"
	strangerID = "user-stranger"
)

// serviceSuite wires every service against a fresh in-memory database per test
type serviceSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	store repository.Store
	now   time.Time

	access      *AccessControl
	projects    *ProjectService
	steps       *StepService
	subtasks    *SubtaskService
	invitations *InvitationService
	notes       *NoteService
}

func (s *serviceSuite) SetupTest() {
	var err error

	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	// A second connection would see a different, empty in-memory database
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(database.Migrate(s.db))

	s.ctx = context.Background()
	s.store = repository.NewStore(s.db)
	s.now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.wire(false, nil)
}

func (s *serviceSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *serviceSuite) wire(memberModifyCanWrite bool, planner StepPlanner) {
	s.access = NewAccessControl(memberModifyCanWrite)
	s.projects = NewProjectService(s.store, s.access)
	s.steps = NewStepService(s.store, s.access, planner)
	s.subtasks = NewSubtaskService(s.store, s.access)
	s.invitations = NewInvitationService(s.store, s.access, ClockFunc(func() time.Time { return s.now }), 7*24*time.Hour)
	s.notes = NewNoteService(s.store, s.access)
}

func (s *serviceSuite) createProject(name string) *models.Project {
	project, err := s.projects.Create(s.ctx, CreateProjectInput{OwnerID: ownerID, Name: name})
	s.Require().NoError(err)
	return project
}

func (s *serviceSuite) createSteps(projectID string, titles ...string) []*models.Step {
	steps := make([]*models.Step, 0, len(titles))
	for _, title := range titles {
		step, err := s.steps.Create(s.ctx, CreateStepInput{ProjectID: projectID, CallerID: ownerID, Title: title})
		s.Require().NoError(err)
		steps = append(steps, step)
	}
	return steps
}

func (s *serviceSuite) addMember(projectID, userID string, permission models.Permission) {
	_, err := s.store.Members().AddIfAbsent(s.ctx, &models.ProjectMember{
		ProjectID:  projectID,
		UserID:     userID,
		Permission: permission,
		AddedAt:    s.now,
		AddedBy:    ownerID,
	})
	s.Require().NoError(err)
}

func (s *serviceSuite) toggle(stepID string) *models.Step {
	step, err := s.steps.ToggleComplete(s.ctx, ownerID, stepID)
	s.Require().NoError(err)
	return step
}

func (s *serviceSuite) stepsOf(projectID string) []models.Step {
	steps, err := s.store.Steps().ListByProject(s.ctx, projectID)
	s.Require().NoError(err)
	return steps
}

// assertWorkflowInvariants checks dense order, sequential unlocking and completed-implies-unlocked
func (s *serviceSuite) assertWorkflowInvariants(projectID string) {
	steps := s.stepsOf(projectID)
	for i, step := range steps {
		s.Equal(i, step.Order, "order of %s", step.Title)
		expectUnlocked := i == 0 || steps[i-1].IsCompleted
		s.Equal(expectUnlocked, step.IsUnlocked, "unlock of %s", step.Title)
		if step.IsCompleted {
			s.True(step.IsUnlocked, "%s completed while locked", step.Title)
		}
	}
}
