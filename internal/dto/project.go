package dto

import (
	"time"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectViewDTO is a project enriched with the caller's access, steps and progress
type ProjectViewDTO struct {
	ProjectDTO
	Role           services.Role     `json:"role"`
	Permission     models.Permission `json:"permission,omitempty"`
	Progress       float64           `json:"progress"`
	StepCount      int               `json:"step_count"`
	CompletedSteps int               `json:"completed_steps"`
	Steps          []StepDTO         `json:"steps"`
}

// MemberDTO represents a project member in API responses
type MemberDTO struct {
	UserID     string            `json:"user_id"`
	Name       string            `json:"name"`
	Permission models.Permission `json:"permission"`
	AddedAt    time.Time         `json:"added_at"`
	AddedBy    string            `json:"added_by"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        project.Name,
		Description: project.Description,
		Link:        project.Link,
		Color:       project.Color,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectViewDTO converts an enriched project view, nesting each step's subtasks
func ToProjectViewDTO(view services.ProjectView) ProjectViewDTO {
	steps := make([]StepDTO, len(view.Steps))
	completed := 0
	for i, step := range view.Steps {
		steps[i] = ToStepDTO(step)
		steps[i].Subtasks = ToSubtaskDTOs(view.Subtasks[step.ID])
		if step.IsCompleted {
			completed++
		}
	}

	return ProjectViewDTO{
		ProjectDTO:     ToProjectDTO(view.Project),
		Role:           view.Access.Role,
		Permission:     view.Access.Permission,
		Progress:       view.Progress,
		StepCount:      len(view.Steps),
		CompletedSteps: completed,
		Steps:          steps,
	}
}

func ToProjectViewDTOs(views []services.ProjectView) []ProjectViewDTO {
	out := make([]ProjectViewDTO, len(views))
	for i, view := range views {
		out[i] = ToProjectViewDTO(view)
	}
	return out
}

func ToMemberDTOs(members []services.MemberView) []MemberDTO {
	out := make([]MemberDTO, len(members))
	for i, m := range members {
		out[i] = MemberDTO{
			UserID:     m.UserID,
			Name:       m.Name,
			Permission: m.Permission,
			AddedAt:    m.AddedAt,
			AddedBy:    m.AddedBy,
		}
	}
	return out
}
