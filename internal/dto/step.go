package dto

import (
	"time"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID          string `json:"id"`
	StepID      string `json:"step_id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
	Order       int    `json:"order"`
}

// StepDTO represents a step in API responses
type StepDTO struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Order       int          `json:"order"`
	IsCompleted bool         `json:"is_completed"`
	IsUnlocked  bool         `json:"is_unlocked"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Subtasks    []SubtaskDTO `json:"subtasks,omitempty"`
}

// SuggestedStepDTO is an AI proposal that has not been saved
type SuggestedStepDTO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subtasks    []string `json:"subtasks"`
}

func ToSubtaskDTO(subtask models.Subtask) SubtaskDTO {
	return SubtaskDTO{
		ID:          subtask.ID,
		StepID:      subtask.StepID,
		Title:       subtask.Title,
		IsCompleted: subtask.IsCompleted,
		Order:       subtask.Order,
	}
}

func ToSubtaskDTOs(subtasks []models.Subtask) []SubtaskDTO {
	out := make([]SubtaskDTO, len(subtasks))
	for i, subtask := range subtasks {
		out[i] = ToSubtaskDTO(subtask)
	}
	return out
}

func ToStepDTO(step models.Step) StepDTO {
	return StepDTO{
		ID:          step.ID,
		ProjectID:   step.ProjectID,
		Title:       step.Title,
		Description: step.Description,
		Order:       step.Order,
		IsCompleted: step.IsCompleted,
		IsUnlocked:  step.IsUnlocked,
		UpdatedAt:   step.UpdatedAt,
	}
}

func ToStepDTOs(steps []models.Step) []StepDTO {
	out := make([]StepDTO, len(steps))
	for i, step := range steps {
		out[i] = ToStepDTO(step)
	}
	return out
}

func ToSuggestedStepDTOs(steps []services.SuggestedStep) []SuggestedStepDTO {
	out := make([]SuggestedStepDTO, len(steps))
	for i, step := range steps {
		subtasks := step.Subtasks
		if subtasks == nil {
			subtasks = []string{}
		}
		out[i] = SuggestedStepDTO{
			Title:       step.Title,
			Description: step.Description,
			Subtasks:    subtasks,
		}
	}
	return out
}
