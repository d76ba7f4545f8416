package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/dto"
	"github.com/yukikurage/stepflow-api/internal/metrics"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// ProjectHandler serves projects and their memberships
type ProjectHandler struct {
	projects *services.ProjectService
	metrics  *metrics.Metrics
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *services.ProjectService, m *metrics.Metrics) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		metrics:  m,
	}
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Link        string `json:"link"`
		Color       string `json:"color"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), services.CreateProjectInput{
		OwnerID:     callerID(c),
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns owned projects followed by shared ones
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	views, err := h.projects.List(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectViewDTOs(views),
	})
}

// GetProject returns one project with steps, access and progress
func (h *ProjectHandler) GetProject(c *gin.Context) {
	view, err := h.projects.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectViewDTO(*view))
}

// UpdateProject applies a partial update to a project the caller owns
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Link        *string `json:"link"`
		Color       *string `json:"color"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	project, err := h.projects.Update(c.Request.Context(), services.UpdateProjectInput{
		ProjectID:   c.Param("id"),
		CallerID:    callerID(c),
		Name:        req.Name,
		Description: req.Description,
		Link:        req.Link,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and everything under it
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordEvent(metrics.EventProjectDeleted)

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ListMembers returns the members of a project
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	members, err := h.projects.ListMembers(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToMemberDTOs(members),
	})
}

// RemoveMember removes a member from a project (owner only)
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	err := h.projects.RemoveMember(c.Request.Context(), callerID(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
