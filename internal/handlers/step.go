package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/dto"
	"github.com/yukikurage/stepflow-api/internal/metrics"
	"github.com/yukikurage/stepflow-api/internal/services"
)

type StepHandler struct {
	steps   *services.StepService
	metrics *metrics.Metrics
}

func NewStepHandler(steps *services.StepService, m *metrics.Metrics) *StepHandler {
	return &StepHandler{
		steps:   steps,
		metrics: m,
	}
}

// ListSteps returns a project's steps in order
func (h *StepHandler) ListSteps(c *gin.Context) {
	steps, err := h.steps.ListByProject(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"steps": dto.ToStepDTOs(steps),
	})
}

// CreateStep appends a step to the end of a project
func (h *StepHandler) CreateStep(c *gin.Context) {
	type CreateStepRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	step, err := h.steps.Create(c.Request.Context(), services.CreateStepInput{
		ProjectID:   c.Param("id"),
		CallerID:    callerID(c),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToStepDTO(*step))
}

// ToggleStep flips a step between completed and not completed
func (h *StepHandler) ToggleStep(c *gin.Context) {
	step, err := h.steps.ToggleComplete(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if step.IsCompleted {
		h.metrics.RecordEvent(metrics.EventStepCompleted)
	} else {
		h.metrics.RecordEvent(metrics.EventStepReopened)
	}

	c.JSON(http.StatusOK, dto.ToStepDTO(*step))
}

// UpdateStep edits title, description or order of a step
func (h *StepHandler) UpdateStep(c *gin.Context) {
	type UpdateStepRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Order       *int    `json:"order"`
	}

	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	step, err := h.steps.Update(c.Request.Context(), services.UpdateStepInput{
		StepID:      c.Param("id"),
		CallerID:    callerID(c),
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStepDTO(*step))
}

// DeleteStep removes a step and reflows the remaining ones
func (h *StepHandler) DeleteStep(c *gin.Context) {
	if err := h.steps.Remove(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordEvent(metrics.EventStepRemoved)

	c.JSON(http.StatusOK, gin.H{
		"message": "Step deleted successfully",
	})
}

// ReorderSteps assigns a new order from the full list of step IDs
func (h *StepHandler) ReorderSteps(c *gin.Context) {
	type ReorderStepsRequest struct {
		StepIDs []string `json:"step_ids" binding:"required"`
	}

	var req ReorderStepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	steps, err := h.steps.Reorder(c.Request.Context(), services.ReorderStepsInput{
		ProjectID: c.Param("id"),
		CallerID:  callerID(c),
		StepIDs:   req.StepIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"steps": dto.ToStepDTOs(steps),
	})
}

// SuggestSteps asks the planner for steps. Nothing is persisted.
func (h *StepHandler) SuggestSteps(c *gin.Context) {
	suggestions, err := h.steps.Suggest(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"steps": dto.ToSuggestedStepDTOs(suggestions),
	})
}
