package repository

import (
	"context"

	"github.com/yukikurage/stepflow-api/internal/database"
	"github.com/yukikurage/stepflow-api/internal/models"
	"gorm.io/gorm"
)

// GormStepRepository is a GORM implementation of StepRepository
type GormStepRepository struct {
	db *gorm.DB
}

// Create creates a new step
func (r *GormStepRepository) Create(ctx context.Context, step *models.Step) error {
	return r.db.WithContext(ctx).Create(step).Error
}

// FindByID finds a step by ID
func (r *GormStepRepository) FindByID(ctx context.Context, id string) (*models.Step, error) {
	var step models.Step
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// FindByOrder finds the step at order within a project
func (r *GormStepRepository) FindByOrder(ctx context.Context, projectID string, order int) (*models.Step, error) {
	var step models.Step
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND sort_order = ?", projectID, order).
		First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// ListByProject lists a project's steps by order
func (r *GormStepRepository) ListByProject(ctx context.Context, projectID string) ([]models.Step, error) {
	var steps []models.Step
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Scopes(database.InPosition("")).
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// ListByIDs lists steps by ID
func (r *GormStepRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Step, error) {
	if len(ids) == 0 {
		return []models.Step{}, nil
	}

	var steps []models.Step
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Scopes(database.InPosition("project_id")).
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// CountByProject counts a project's steps
func (r *GormStepRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Step{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// UpdateFields patches columns of a step
func (r *GormStepRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Step{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ResetAfter uncompletes and locks every step after order in a single statement
func (r *GormStepRepository) ResetAfter(ctx context.Context, projectID string, order int) error {
	return r.db.WithContext(ctx).
		Model(&models.Step{}).
		Where("project_id = ? AND sort_order > ?", projectID, order).
		Updates(map[string]interface{}{
			"is_completed": false,
			"is_unlocked":  false,
		}).Error
}

// Delete deletes a step
func (r *GormStepRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Step{}).Error
}

// DeleteByIDs deletes steps in one statement
func (r *GormStepRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Step{}).Error
}
