package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"github.com/yukikurage/stepflow-api/internal/utils"
	"gorm.io/gorm"
)

// NoteService handles project notes. Notes belong to their author.
type NoteService struct {
	store  repository.Store
	access *AccessControl
}

// NewNoteService creates a new NoteService
func NewNoteService(store repository.Store, access *AccessControl) *NoteService {
	return &NoteService{
		store:  store,
		access: access,
	}
}

// CreateNoteInput represents input for creating a note
type CreateNoteInput struct {
	ProjectID string
	CallerID  string
	Content   string `validate:"required"`
}

// UpdateNoteInput represents input for updating a note
type UpdateNoteInput struct {
	NoteID   string
	CallerID string
	Content  string `validate:"required"`
}

// List returns a page of a project's notes, or nothing for callers without access
func (s *NoteService) List(ctx context.Context, callerID, projectID string, params utils.PaginationParams) ([]models.Note, int64, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, 0, err
	}

	_, access, err := s.access.loadProject(ctx, s.store, callerID, projectID, false)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return []models.Note{}, 0, nil
		}
		return nil, 0, err
	}
	if !access.CanView() {
		return []models.Note{}, 0, nil
	}

	notes, total, err := s.store.Notes().ListByProject(ctx, projectID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, total, nil
}

// Create adds a note authored by the caller
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*models.Note, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	_, access, err := s.access.loadProject(ctx, s.store, input.CallerID, input.ProjectID, false)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(access, ActionEditContent); err != nil {
		return nil, err
	}

	note := &models.Note{
		ProjectID: input.ProjectID,
		UserID:    input.CallerID,
		Content:   input.Content,
	}
	if err := s.store.Notes().Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// Update replaces the content of the caller's own note
func (s *NoteService) Update(ctx context.Context, input UpdateNoteInput) (*models.Note, error) {
	if err := requireCaller(input.CallerID); err != nil {
		return nil, err
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	note, err := s.authorOnly(ctx, input.CallerID, input.NoteID)
	if err != nil {
		return nil, err
	}

	note.Content = input.Content
	if err := s.store.Notes().Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// Delete removes the caller's own note
func (s *NoteService) Delete(ctx context.Context, callerID, noteID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	note, err := s.authorOnly(ctx, callerID, noteID)
	if err != nil {
		return err
	}

	if err := s.store.Notes().Delete(ctx, note.ID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// authorOnly loads a note the caller can see and rejects anyone but its author
func (s *NoteService) authorOnly(ctx context.Context, callerID, noteID string) (*models.Note, error) {
	note, err := s.store.Notes().FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	_, access, err := s.access.loadProject(ctx, s.store, callerID, note.ProjectID, false)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	if !access.CanView() {
		return nil, ErrNoteNotFound
	}
	if note.UserID != callerID {
		return nil, ErrUnauthorized
	}
	return note, nil
}
