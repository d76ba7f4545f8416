package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/dto"
	"github.com/yukikurage/stepflow-api/internal/services"
	"github.com/yukikurage/stepflow-api/internal/utils"
)

type NoteHandler struct {
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// ListNotes returns a page of a project's notes, newest first
func (h *NoteHandler) ListNotes(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	notes, total, err := h.notes.List(c.Request.Context(), callerID(c), c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteListResponse(notes, params, total))
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	type NoteRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	note, err := h.notes.Create(c.Request.Context(), services.CreateNoteInput{
		ProjectID: c.Param("id"),
		CallerID:  callerID(c),
		Content:   req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToNoteDTO(*note))
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	type NoteRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	note, err := h.notes.Update(c.Request.Context(), services.UpdateNoteInput{
		NoteID:   c.Param("id"),
		CallerID: callerID(c),
		Content:  req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNoteDTO(*note))
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Note deleted successfully",
	})
}
