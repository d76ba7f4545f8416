package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/dto"
	"github.com/yukikurage/stepflow-api/internal/services"
)

type SubtaskHandler struct {
	subtasks *services.SubtaskService
}

func NewSubtaskHandler(subtasks *services.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{subtasks: subtasks}
}

// ListSubtasks returns subtasks for every step_id query value the caller can view
func (h *SubtaskHandler) ListSubtasks(c *gin.Context) {
	subtasks, err := h.subtasks.ListBySteps(c.Request.Context(), callerID(c), c.QueryArray("step_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subtasks": dto.ToSubtaskDTOs(subtasks),
	})
}

func (h *SubtaskHandler) CreateSubtask(c *gin.Context) {
	type CreateSubtaskRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	subtask, err := h.subtasks.Create(c.Request.Context(), services.CreateSubtaskInput{
		StepID:   c.Param("id"),
		CallerID: callerID(c),
		Title:    req.Title,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubtaskDTO(*subtask))
}

func (h *SubtaskHandler) UpdateSubtask(c *gin.Context) {
	type UpdateSubtaskRequest struct {
		Title       *string `json:"title"`
		IsCompleted *bool   `json:"is_completed"`
	}

	var req UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	subtask, err := h.subtasks.Update(c.Request.Context(), services.UpdateSubtaskInput{
		SubtaskID:   c.Param("id"),
		CallerID:    callerID(c),
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubtaskDTO(*subtask))
}

func (h *SubtaskHandler) DeleteSubtask(c *gin.Context) {
	if err := h.subtasks.Remove(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Subtask deleted successfully",
	})
}
