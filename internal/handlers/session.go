package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/stepflow-api/internal/constants"
	"github.com/yukikurage/stepflow-api/internal/dto"
	apierrors "github.com/yukikurage/stepflow-api/internal/errors"
	"github.com/yukikurage/stepflow-api/internal/middleware"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// SessionHandler turns a verified bearer token into a cookie session.
type SessionHandler struct {
	users *services.UserService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(users *services.UserService) *SessionHandler {
	return &SessionHandler{
		users: users,
	}
}

// Login stores the token subject in the session and refreshes the user profile.
// The route must run behind RequireAuth so the bearer token is already verified.
func (h *SessionHandler) Login(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apierrors.Unauthorized(c, "Bearer token required")
		return
	}

	user, err := h.users.Sync(c.Request.Context(), services.SyncUserInput{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the session.
func (h *SessionHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *SessionHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
