package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/services"
)

func TestToProjectViewDTO_Golden(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	steps := []models.Step{
		{ID: "s-1", ProjectID: "p-1", Title: "Plan", Order: 0, IsCompleted: true, IsUnlocked: true, UpdatedAt: at},
		{ID: "s-2", ProjectID: "p-1", Title: "Build", Order: 1, IsUnlocked: true, UpdatedAt: at},
		{ID: "s-3", ProjectID: "p-1", Title: "Ship", Order: 2, UpdatedAt: at},
	}
	subtasks := map[string][]models.Subtask{
		"s-2": {
			{ID: "st-1", StepID: "s-2", Title: "API", IsCompleted: true, Order: 0},
			{ID: "st-2", StepID: "s-2", Title: "UI", Order: 1},
			{ID: "st-3", StepID: "s-2", Title: "Docs", Order: 2},
		},
	}

	view := services.ProjectView{
		Project: models.Project{
			ID:          "p-1",
			OwnerID:     "u-1",
			Name:        "Launch",
			Description: "Ship v1",
			Link:        "https://example.com",
			Color:       "#3b82f6",
			CreatedAt:   at,
			UpdatedAt:   at,
		},
		Access:   services.Access{Role: services.RoleOwner, Permission: models.PermissionModify},
		Steps:    steps,
		Subtasks: subtasks,
		Progress: services.CalculateProgress(steps, subtasks),
	}

	out, err := json.MarshalIndent(ToProjectViewDTO(view), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "project_view", out)
}

func TestToInvitationDetailsDTO_InvalidTokenHidesProject(t *testing.T) {
	out := ToInvitationDetailsDTO(services.InvitationDetails{Status: services.DetailsStatusInvalid})

	assert.Equal(t, "invalid", out.Status)
	assert.Nil(t, out.Project)
	assert.Nil(t, out.ExpiresAt)

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"invalid","is_expired":false}`, string(body))
}

func TestToSuggestedStepDTOs_NeverNullSubtasks(t *testing.T) {
	out := ToSuggestedStepDTOs([]services.SuggestedStep{{Title: "Research"}})

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Research","description":"","subtasks":[]}]`, string(body))
}
