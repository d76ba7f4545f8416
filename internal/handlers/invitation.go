package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/dto"
	"github.com/yukikurage/stepflow-api/internal/metrics"
	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// InvitationHandler serves invitation links
type InvitationHandler struct {
	invitations *services.InvitationService
	metrics     *metrics.Metrics
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitations *services.InvitationService, m *metrics.Metrics) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		metrics:     m,
	}
}

// CreateInvitation issues a new invitation link for a project
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	type CreateInvitationRequest struct {
		Permission models.Permission `json:"permission" binding:"required"`
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	invitation, err := h.invitations.Create(c.Request.Context(), services.CreateInvitationInput{
		ProjectID:  c.Param("id"),
		CallerID:   callerID(c),
		Permission: req.Permission,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*invitation, false))
}

// ListInvitations returns a project's invitations to its owner
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	views, err := h.invitations.ListByProject(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": dto.ToInvitationDTOs(views),
	})
}

// GetInvitation returns the public details of a token.
// Unknown tokens answer 200 with status "invalid".
func (h *InvitationHandler) GetInvitation(c *gin.Context) {
	details, err := h.invitations.Details(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDetailsDTO(*details))
}

// AcceptInvitation joins the caller to the invited project
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	projectID, err := h.invitations.Accept(c.Request.Context(), callerID(c), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordEvent(metrics.EventInvitationAccepted)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Invitation accepted",
		"project_id": projectID,
	})
}

// DeclineInvitation consumes the invitation without joining
func (h *InvitationHandler) DeclineInvitation(c *gin.Context) {
	if err := h.invitations.Decline(c.Request.Context(), callerID(c), c.Param("token")); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.RecordEvent(metrics.EventInvitationDeclined)

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation declined",
	})
}
