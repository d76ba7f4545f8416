package dto

import (
	"time"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// InvitationDTO is returned to the project owner
type InvitationDTO struct {
	ID         string                  `json:"id"`
	ProjectID  string                  `json:"project_id"`
	Token      string                  `json:"token"`
	Permission models.Permission       `json:"permission"`
	Status     models.InvitationStatus `json:"status"`
	IsExpired  bool                    `json:"is_expired"`
	ExpiresAt  time.Time               `json:"expires_at"`
	AcceptedBy *string                 `json:"accepted_by,omitempty"`
	AcceptedAt *time.Time              `json:"accepted_at,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// InvitationDetailsDTO is the public view of a token. Project fields are omitted for invalid tokens.
type InvitationDetailsDTO struct {
	Status      string                `json:"status"`
	IsExpired   bool                  `json:"is_expired"`
	Project     *InvitationProjectDTO `json:"project,omitempty"`
	InviterName string                `json:"inviter_name,omitempty"`
	Permission  models.Permission     `json:"permission,omitempty"`
	ExpiresAt   *time.Time            `json:"expires_at,omitempty"`
}

// InvitationProjectDTO summarizes the project behind an invitation
type InvitationProjectDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

func ToInvitationDTO(invitation models.Invitation, isExpired bool) InvitationDTO {
	return InvitationDTO{
		ID:         invitation.ID,
		ProjectID:  invitation.ProjectID,
		Token:      invitation.Token,
		Permission: invitation.Permission,
		Status:     invitation.Status,
		IsExpired:  isExpired,
		ExpiresAt:  invitation.ExpiresAt,
		AcceptedBy: invitation.AcceptedBy,
		AcceptedAt: invitation.AcceptedAt,
		CreatedAt:  invitation.CreatedAt,
	}
}

func ToInvitationDTOs(views []services.InvitationView) []InvitationDTO {
	out := make([]InvitationDTO, len(views))
	for i, v := range views {
		out[i] = ToInvitationDTO(v.Invitation, v.IsExpired)
	}
	return out
}

func ToInvitationDetailsDTO(details services.InvitationDetails) InvitationDetailsDTO {
	out := InvitationDetailsDTO{
		Status:    details.Status,
		IsExpired: details.IsExpired,
	}
	if details.Status == services.DetailsStatusInvalid {
		return out
	}

	expiresAt := details.ExpiresAt
	out.Project = &InvitationProjectDTO{
		ID:          details.ProjectID,
		Name:        details.ProjectName,
		Description: details.ProjectDescription,
		Color:       details.ProjectColor,
	}
	out.InviterName = details.InviterName
	out.Permission = details.Permission
	out.ExpiresAt = &expiresAt
	return out
}
