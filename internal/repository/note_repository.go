package repository

import (
	"context"

	"github.com/yukikurage/stepflow-api/internal/database"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/utils"
	"gorm.io/gorm"
)

// GormNoteRepository is a GORM implementation of NoteRepository
type GormNoteRepository struct {
	db *gorm.DB
}

// Create creates a new note
func (r *GormNoteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// FindByID finds a note by ID
func (r *GormNoteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByProject lists a project's notes with pagination
func (r *GormNoteRepository) ListByProject(ctx context.Context, projectID string, params utils.PaginationParams) ([]models.Note, int64, error) {
	var notes []models.Note
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Note{}).Where("project_id = ?", projectID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Scopes(database.Paginate(params)).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

// Update updates a note
func (r *GormNoteRepository) Update(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// Delete deletes a note
func (r *GormNoteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Note{}).Error
}

// DeleteByProject deletes every note of a project
func (r *GormNoteRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Note{}).Error
}
