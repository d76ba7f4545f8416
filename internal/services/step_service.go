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

// StepService owns the step state machine: ordering, unlocking and completion cascades.
type StepService struct {
	store   repository.Store
	access  *AccessControl
	planner StepPlanner
}

// NewStepService creates a new StepService. planner may be nil when AI suggestions are disabled.
func NewStepService(store repository.Store, access *AccessControl, planner StepPlanner) *StepService {
	return &StepService{
		store:   store,
		access:  access,
		planner: planner,
	}
}

// CreateStepInput represents input for creating a step
type CreateStepInput struct {
	ProjectID   string
	CallerID    string
	Title       string `validate:"required,max=255"`
	Description string
}

// UpdateStepInput represents input for updating a step
type UpdateStepInput struct {
	StepID      string
	CallerID    string
	Title       *string
	Description *string
	Order       *int
}

// ReorderStepsInput lists every step of a project in its new order
type ReorderStepsInput struct {
	ProjectID string
	CallerID  string
	StepIDs   []string
}

// ListByProject returns a project's steps in order, or an empty list when the caller has no access
func (s *StepService) ListByProject(ctx context.Context, callerID, projectID string) ([]models.Step, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	_, access, err := s.access.loadProject(ctx, s.store, callerID, projectID, false)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return []models.Step{}, nil
		}
		return nil, err
	}
	if !access.CanView() {
		return []models.Step{}, nil
	}

	steps, err := s.store.Steps().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	return steps, nil
}

// Create appends a step at the end of the project. Only the first step starts unlocked.
func (s *StepService) Create(ctx context.Context, input CreateStepInput) (*models.Step, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var step *models.Step
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, _, err := s.access.authorizeProject(ctx, tx, input.CallerID, input.ProjectID, ActionEditContent); err != nil {
			return err
		}

		count, err := tx.Steps().CountByProject(ctx, input.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to count steps: %w", err)
		}

		step = &models.Step{
			ProjectID:   input.ProjectID,
			Title:       input.Title,
			Description: input.Description,
			Order:       int(count),
			IsUnlocked:  count == 0,
		}
		if err := tx.Steps().Create(ctx, step); err != nil {
			return fmt.Errorf("failed to create step: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return step, nil
}

// ToggleComplete flips a step's completion.
// Completing unlocks the next step; reopening relocks and uncompletes every later
// step and resets the step's own subtasks.
func (s *StepService) ToggleComplete(ctx context.Context, callerID, stepID string) (*models.Step, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	var result *models.Step
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		step, err := s.lockStep(ctx, tx, callerID, stepID)
		if err != nil {
			return err
		}
		if !step.IsUnlocked {
			return ErrStepLocked
		}

		if !step.IsCompleted {
			if err := tx.Steps().UpdateFields(ctx, step.ID, map[string]interface{}{"is_completed": true}); err != nil {
				return fmt.Errorf("failed to complete step: %w", err)
			}

			next, err := tx.Steps().FindByOrder(ctx, step.ProjectID, step.Order+1)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
			case err != nil:
				return fmt.Errorf("failed to find next step: %w", err)
			case !next.IsUnlocked:
				if err := tx.Steps().UpdateFields(ctx, next.ID, map[string]interface{}{"is_unlocked": true}); err != nil {
					return fmt.Errorf("failed to unlock next step: %w", err)
				}
			}
		} else {
			if err := tx.Steps().UpdateFields(ctx, step.ID, map[string]interface{}{"is_completed": false}); err != nil {
				return fmt.Errorf("failed to reopen step: %w", err)
			}
			if err := tx.Steps().ResetAfter(ctx, step.ProjectID, step.Order); err != nil {
				return fmt.Errorf("failed to relock later steps: %w", err)
			}
			if err := tx.Subtasks().ResetCompletedByStep(ctx, step.ID); err != nil {
				return fmt.Errorf("failed to reset subtasks: %w", err)
			}
		}

		result, err = tx.Steps().FindByID(ctx, step.ID)
		if err != nil {
			return fmt.Errorf("failed to reload step: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Remove deletes a step with its subtasks and reflows the remaining steps.
func (s *StepService) Remove(ctx context.Context, callerID, stepID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx repository.Store) error {
		step, err := s.lockStep(ctx, tx, callerID, stepID)
		if err != nil {
			return err
		}

		if err := tx.Subtasks().DeleteByStepIDs(ctx, []string{step.ID}); err != nil {
			return fmt.Errorf("failed to delete subtasks: %w", err)
		}
		if err := tx.Steps().Delete(ctx, step.ID); err != nil {
			return fmt.Errorf("failed to delete step: %w", err)
		}

		remaining, err := tx.Steps().ListByProject(ctx, step.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		return reflowSteps(ctx, tx, remaining)
	})
}

// Reorder assigns dense order following input.StepIDs, which must name every
// step of the project exactly once, then recomputes unlock and completion.
func (s *StepService) Reorder(ctx context.Context, input ReorderStepsInput) ([]models.Step, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}

	var result []models.Step
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, _, err := s.access.authorizeProject(ctx, tx, input.CallerID, input.ProjectID, ActionEditContent); err != nil {
			return err
		}

		current, err := tx.Steps().ListByProject(ctx, input.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		if len(input.StepIDs) != len(current) {
			return newValidationError("step_ids", "must list every step of the project exactly once")
		}

		byID := make(map[string]models.Step, len(current))
		for _, step := range current {
			byID[step.ID] = step
		}
		ordered := make([]models.Step, 0, len(current))
		for _, id := range input.StepIDs {
			step, ok := byID[id]
			if !ok {
				return newValidationError("step_ids", "must list every step of the project exactly once")
			}
			delete(byID, id)
			ordered = append(ordered, step)
		}

		if err := reflowSteps(ctx, tx, ordered); err != nil {
			return err
		}

		result, err = tx.Steps().ListByProject(ctx, input.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to list steps: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Update changes a step's text fields and optionally its order.
// A bare order change does not renumber siblings.
func (s *StepService) Update(ctx context.Context, input UpdateStepInput) (*models.Step, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}

	var result *models.Step
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		step, err := s.lockStep(ctx, tx, input.CallerID, input.StepID)
		if err != nil {
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
		if input.Description != nil {
			fields["description"] = *input.Description
		}
		if input.Order != nil {
			count, err := tx.Steps().CountByProject(ctx, step.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to count steps: %w", err)
			}
			if *input.Order < 0 || int64(*input.Order) >= count {
				return newValidationError("order", fmt.Sprintf("must be between 0 and %d", count-1))
			}
			fields["sort_order"] = *input.Order
		}

		if len(fields) > 0 {
			if err := tx.Steps().UpdateFields(ctx, step.ID, fields); err != nil {
				return fmt.Errorf("failed to update step: %w", err)
			}
		}

		result, err = tx.Steps().FindByID(ctx, step.ID)
		if err != nil {
			return fmt.Errorf("failed to reload step: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// lockStep resolves a step's project, locks it, authorizes content edits and
// re-reads the step so the caller sees state committed by any earlier writer.
func (s *StepService) lockStep(ctx context.Context, tx repository.Store, callerID, stepID string) (*models.Step, error) {
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

func findStep(ctx context.Context, store repository.Store, stepID string) (*models.Step, error) {
	step, err := store.Steps().FindByID(ctx, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, fmt.Errorf("failed to find step: %w", err)
	}
	return step, nil
}

// reflowSteps renumbers ordered densely from 0 and recomputes each step's
// flags: the first step is unlocked, every other step is unlocked iff its
// predecessor is completed, and a step stays completed only while unlocked.
func reflowSteps(ctx context.Context, tx repository.Store, ordered []models.Step) error {
	prevCompleted := false
	for i := range ordered {
		step := &ordered[i]
		unlocked := i == 0 || prevCompleted
		completed := step.IsCompleted && unlocked

		if step.Order != i || step.IsUnlocked != unlocked || step.IsCompleted != completed {
			if err := tx.Steps().UpdateFields(ctx, step.ID, map[string]interface{}{
				"sort_order":   i,
				"is_unlocked":  unlocked,
				"is_completed": completed,
			}); err != nil {
				return fmt.Errorf("failed to reflow step: %w", err)
			}
			step.Order = i
			step.IsUnlocked = unlocked
			step.IsCompleted = completed
		}

		prevCompleted = completed
	}
	return nil
}

// Suggest asks the planner for steps that could follow the project's current plan.
// Nothing is persisted.
func (s *StepService) Suggest(ctx context.Context, callerID, projectID string) ([]SuggestedStep, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	project, access, err := s.access.loadProject(ctx, s.store, callerID, projectID, false)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(access, ActionManageProject); err != nil {
		return nil, err
	}

	if s.planner == nil {
		return nil, ErrAIServiceNotConfigured
	}

	existing, err := s.store.Steps().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}

	suggestions, err := s.planner.SuggestSteps(ctx, project, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to generate steps: %w", err)
	}
	if len(suggestions) == 0 {
		return nil, ErrAINoStepsGenerated
	}
	return suggestions, nil
}
