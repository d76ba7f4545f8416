package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"gorm.io/gorm"
)

// SubtaskService handles subtask business logic scoped to the parent step
type SubtaskService struct {
	store  repository.Store
	access *AccessControl
}

// NewSubtaskService creates a new SubtaskService
func NewSubtaskService(store repository.Store, access *AccessControl) *SubtaskService {
	return &SubtaskService{
		store:  store,
		access: access,
	}
}

// CreateSubtaskInput represents input for creating a subtask
type CreateSubtaskInput struct {
	StepID   string
	CallerID string
	Title    string `validate:"required,max=255"`
}

// UpdateSubtaskInput represents input for updating a subtask
type UpdateSubtaskInput struct {
	SubtaskID   string
	CallerID    string
	Title       *string
	IsCompleted *bool
}

// ListBySteps returns the subtasks of every listed step the caller can view.
// Steps the caller cannot see are silently omitted.
func (s *SubtaskService) ListBySteps(ctx context.Context, callerID string, stepIDs []string) ([]models.Subtask, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	steps, err := s.store.Steps().ListByIDs(ctx, stepIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}

	visible := make(map[string]bool)
	allowed := make([]string, 0, len(steps))
	for _, step := range steps {
		canView, seen := visible[step.ProjectID]
		if !seen {
			_, access, err := s.access.loadProject(ctx, s.store, callerID, step.ProjectID, false)
			switch {
			case errors.Is(err, ErrProjectNotFound):
			case err != nil:
				return nil, err
			default:
				canView = access.CanView()
			}
			visible[step.ProjectID] = canView
		}
		if canView {
			allowed = append(allowed, step.ID)
		}
	}

	subtasks, err := s.store.Subtasks().ListByStepIDs(ctx, allowed)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return subtasks, nil
}

// Create appends a subtask to a step
func (s *SubtaskService) Create(ctx context.Context, input CreateSubtaskInput) (*models.Subtask, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var subtask *models.Subtask
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		step, err := s.lockParent(ctx, tx, input.CallerID, input.StepID)
		if err != nil {
			return err
		}

		count, err := tx.Subtasks().CountByStep(ctx, step.ID)
		if err != nil {
			return fmt.Errorf("failed to count subtasks: %w", err)
		}

		subtask = &models.Subtask{
			StepID: step.ID,
			Title:  input.Title,
			Order:  int(count),
		}
		if err := tx.Subtasks().Create(ctx, subtask); err != nil {
			return fmt.Errorf("failed to create subtask: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return subtask, nil
}

// Update changes a subtask's title or completion. Completing requires the parent step to be unlocked.
func (s *SubtaskService) Update(ctx context.Context, input UpdateSubtaskInput) (*models.Subtask, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}

	var result *models.Subtask
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		subtask, err := findSubtask(ctx, tx, input.SubtaskID)
		if err != nil {
			return err
		}
		step, err := s.lockParent(ctx, tx, input.CallerID, subtask.StepID)
		if err != nil {
			if errors.Is(err, ErrStepNotFound) {
				return ErrSubtaskNotFound
			}
			return err
		}

		fields := map[string]interface{}{}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if err := validateTitle(title); err != nil {
				return err
			}
			fields["title"] = title
		}
		if input.IsCompleted != nil {
			if *input.IsCompleted && !step.IsUnlocked {
				return ErrStepLocked
			}
			fields["is_completed"] = *input.IsCompleted
		}

		if len(fields) > 0 {
			if err := tx.Subtasks().UpdateFields(ctx, subtask.ID, fields); err != nil {
				return fmt.Errorf("failed to update subtask: %w", err)
			}
		}

		result, err = findSubtask(ctx, tx, subtask.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Remove deletes a subtask and closes the gap in its siblings' order
func (s *SubtaskService) Remove(ctx context.Context, callerID, subtaskID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		subtask, err := findSubtask(ctx, tx, subtaskID)
		if err != nil {
			return err
		}
		if _, err := s.lockParent(ctx, tx, callerID, subtask.StepID); err != nil {
			if errors.Is(err, ErrStepNotFound) {
				return ErrSubtaskNotFound
			}
			return err
		}

		if err := tx.Subtasks().Delete(ctx, subtask.ID); err != nil {
			return fmt.Errorf("failed to delete subtask: %w", err)
		}

		siblings, err := tx.Subtasks().ListByStep(ctx, subtask.StepID)
		if err != nil {
			return fmt.Errorf("failed to list subtasks: %w", err)
		}
		for i, sibling := range siblings {
			if sibling.Order == i {
				continue
			}
			if err := tx.Subtasks().UpdateFields(ctx, sibling.ID, map[string]interface{}{"sort_order": i}); err != nil {
				return fmt.Errorf("failed to reorder subtasks: %w", err)
			}
		}
		return nil
	})
}

// lockParent locks the project owning stepID, authorizes content edits and returns the fresh step.
func (s *SubtaskService) lockParent(ctx context.Context, tx repository.Store, callerID, stepID string) (*models.Step, error) {
	step, err := findStep(ctx, tx, stepID)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.access.authorizeProject(ctx, tx, callerID, step.ProjectID, ActionEditContent); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, err
	}

	return findStep(ctx, tx, stepID)
}

func findSubtask(ctx context.Context, store repository.Store, subtaskID string) (*models.Subtask, error) {
	subtask, err := store.Subtasks().FindByID(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to find subtask: %w", err)
	}
	return subtask, nil
}
