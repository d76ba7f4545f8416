package repository

import (
	"context"

	"github.com/yukikurage/stepflow-api/internal/database"
	"github.com/yukikurage/stepflow-api/internal/models"
	"gorm.io/gorm"
)

// GormSubtaskRepository is a GORM implementation of SubtaskRepository
type GormSubtaskRepository struct {
	db *gorm.DB
}

// Create creates a new subtask
func (r *GormSubtaskRepository) Create(ctx context.Context, subtask *models.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

// FindByID finds a subtask by ID
func (r *GormSubtaskRepository) FindByID(ctx context.Context, id string) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subtask).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

// ListByStep lists a step's subtasks by order
func (r *GormSubtaskRepository) ListByStep(ctx context.Context, stepID string) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	if err := r.db.WithContext(ctx).
		Where("step_id = ?", stepID).
		Scopes(database.InPosition("")).
		Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

// ListByStepIDs lists the subtasks of several steps
func (r *GormSubtaskRepository) ListByStepIDs(ctx context.Context, stepIDs []string) ([]models.Subtask, error) {
	if len(stepIDs) == 0 {
		return []models.Subtask{}, nil
	}

	var subtasks []models.Subtask
	if err := r.db.WithContext(ctx).
		Where("step_id IN ?", stepIDs).
		Scopes(database.InPosition("step_id")).
		Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

// CountByStep counts a step's subtasks
func (r *GormSubtaskRepository) CountByStep(ctx context.Context, stepID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Subtask{}).
		Where("step_id = ?", stepID).
		Count(&count).Error
	return count, err
}

// UpdateFields patches columns of a subtask
func (r *GormSubtaskRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Subtask{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ResetCompletedByStep uncompletes the completed subtasks of a step
func (r *GormSubtaskRepository) ResetCompletedByStep(ctx context.Context, stepID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Subtask{}).
		Where("step_id = ? AND is_completed = ?", stepID, true).
		Update("is_completed", false).Error
}

// Delete deletes a subtask
func (r *GormSubtaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Subtask{}).Error
}

// DeleteByStepIDs deletes every subtask of the given steps in one statement
func (r *GormSubtaskRepository) DeleteByStepIDs(ctx context.Context, stepIDs []string) error {
	if len(stepIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("step_id IN ?", stepIDs).Delete(&models.Subtask{}).Error
}
