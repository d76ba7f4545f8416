package dto

import (
	"time"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/utils"
)

// NoteDTO represents a note in API responses
type NoteDTO struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListResponse represents a paginated list of notes
type NoteListResponse struct {
	Notes      []NoteDTO                `json:"notes"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToNoteDTO(note models.Note) NoteDTO {
	return NoteDTO{
		ID:        note.ID,
		ProjectID: note.ProjectID,
		UserID:    note.UserID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func ToNoteListResponse(notes []models.Note, params utils.PaginationParams, total int64) NoteListResponse {
	out := make([]NoteDTO, len(notes))
	for i, note := range notes {
		out[i] = ToNoteDTO(note)
	}
	return NoteListResponse{
		Notes:      out,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
