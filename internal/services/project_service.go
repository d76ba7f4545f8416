package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/stepflow-api/internal/constants"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService answers project queries with access and progress and owns project-level changes
type ProjectService struct {
	store  repository.Store
	access *AccessControl
}

// NewProjectService creates a new ProjectService
func NewProjectService(store repository.Store, access *AccessControl) *ProjectService {
	return &ProjectService{
		store:  store,
		access: access,
	}
}

// ProjectView is a project enriched with the caller's access, its steps and progress
type ProjectView struct {
	Project  models.Project
	Access   Access
	Steps    []models.Step
	Subtasks map[string][]models.Subtask
	Progress float64
}

// MemberView pairs a membership with the member's display name
type MemberView struct {
	models.ProjectMember
	Name string
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	OwnerID     string
	Name        string `validate:"required,max=255"`
	Description string
	Link        string `validate:"omitempty,url"`
	Color       string `validate:"omitempty,hexcolor"`
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	ProjectID   string
	CallerID    string
	Name        *string `validate:"omitempty,max=255"`
	Description *string
	Link        *string `validate:"omitempty,url"`
	Color       *string `validate:"omitempty,hexcolor"`
}

// Create creates a project owned by the caller
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if err := requireCaller(input.OwnerID); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if input.Color == "" {
		input.Color = constants.DefaultProjectColor
	}

	project := &models.Project{
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		Link:        input.Link,
		Color:       strings.ToLower(input.Color),
	}
	if err := s.store.Projects().Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// Update patches an owned project's descriptive fields
func (s *ProjectService) Update(ctx context.Context, input UpdateProjectInput) (*models.Project, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newValidationError("name", "is required")
		}
		input.Name = &name
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var project *models.Project
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		project, _, err = s.access.authorizeProject(ctx, tx, input.CallerID, input.ProjectID, ActionManageProject)
		if err != nil {
			return err
		}

		if input.Name != nil {
			project.Name = *input.Name
		}
		if input.Description != nil {
			project.Description = *input.Description
		}
		if input.Link != nil {
			project.Link = *input.Link
		}
		if input.Color != nil {
			color := strings.ToLower(*input.Color)
			if color == "" {
				color = constants.DefaultProjectColor
			}
			project.Color = color
		}

		if err := tx.Projects().Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// Get returns the enriched view of one project. Callers without access get ErrProjectNotFound.
func (s *ProjectService) Get(ctx context.Context, callerID, projectID string) (*ProjectView, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	project, access, err := s.access.loadProject(ctx, s.store, callerID, projectID, false)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(access, ActionView); err != nil {
		return nil, ErrProjectNotFound
	}

	return s.buildView(ctx, project, access)
}

// List returns every project the caller owns or is a member of, oldest first
func (s *ProjectService) List(ctx context.Context, callerID string) ([]ProjectView, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	owned, err := s.store.Projects().ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned projects: %w", err)
	}

	memberships, err := s.store.Members().ListByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	memberIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		memberIDs = append(memberIDs, m.ProjectID)
	}
	shared, err := s.store.Projects().FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared projects: %w", err)
	}

	views := make([]ProjectView, 0, len(owned)+len(shared))
	seen := make(map[string]bool, len(owned)+len(shared))
	for _, group := range [][]models.Project{owned, shared} {
		for i := range group {
			project := &group[i]
			if seen[project.ID] {
				continue
			}
			seen[project.ID] = true

			access, err := s.access.ResolveAccess(ctx, s.store.Members(), callerID, project)
			if err != nil {
				return nil, err
			}
			if !access.CanView() {
				continue
			}

			view, err := s.buildView(ctx, project, access)
			if err != nil {
				return nil, err
			}
			views = append(views, *view)
		}
	}

	return views, nil
}

// Delete removes a project and everything that references it in one transaction
func (s *ProjectService) Delete(ctx context.Context, callerID, projectID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, _, err := s.access.authorizeProject(ctx, tx, callerID, projectID, ActionManageProject); err != nil {
			return err
		}

		steps, err := tx.Steps().ListByProject(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		stepIDs := make([]string, 0, len(steps))
		for _, step := range steps {
			stepIDs = append(stepIDs, step.ID)
		}

		if err := tx.Subtasks().DeleteByStepIDs(ctx, stepIDs); err != nil {
			return fmt.Errorf("failed to delete subtasks: %w", err)
		}
		if err := tx.Steps().DeleteByIDs(ctx, stepIDs); err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
		if err := tx.Members().DeleteByProject(ctx, projectID); err != nil {
			return fmt.Errorf("failed to delete members: %w", err)
		}
		if err := tx.Invitations().DeleteByProject(ctx, projectID); err != nil {
			return fmt.Errorf("failed to delete invitations: %w", err)
		}
		if err := tx.Notes().DeleteByProject(ctx, projectID); err != nil {
			return fmt.Errorf("failed to delete notes: %w", err)
		}
		if err := tx.Projects().Delete(ctx, projectID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

// ListMembers lists a project's members. Callers without access get an empty list.
func (s *ProjectService) ListMembers(ctx context.Context, callerID, projectID string) ([]MemberView, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	_, access, err := s.access.loadProject(ctx, s.store, callerID, projectID, false)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return []MemberView{}, nil
		}
		return nil, err
	}
	if !access.CanView() {
		return []MemberView{}, nil
	}

	members, err := s.store.Members().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.store.Users().FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, MemberView{ProjectMember: m, Name: names[m.UserID]})
	}
	return views, nil
}

// RemoveMember revokes a member's access. Owner only.
func (s *ProjectService) RemoveMember(ctx context.Context, callerID, projectID, userID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, _, err := s.access.authorizeProject(ctx, tx, callerID, projectID, ActionManageProject); err != nil {
			return err
		}

		if _, err := tx.Members().Find(ctx, projectID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to find member: %w", err)
		}

		if err := tx.Members().Remove(ctx, projectID, userID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

func (s *ProjectService) buildView(ctx context.Context, project *models.Project, access Access) (*ProjectView, error) {
	steps, err := s.store.Steps().ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}

	stepIDs := make([]string, 0, len(steps))
	for _, step := range steps {
		stepIDs = append(stepIDs, step.ID)
	}
	subtasks, err := s.store.Subtasks().ListByStepIDs(ctx, stepIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	byStep := make(map[string][]models.Subtask, len(steps))
	for _, subtask := range subtasks {
		byStep[subtask.StepID] = append(byStep[subtask.StepID], subtask)
	}

	return &ProjectView{
		Project:  *project,
		Access:   access,
		Steps:    steps,
		Subtasks: byStep,
		Progress: CalculateProgress(steps, byStep),
	}, nil
}
