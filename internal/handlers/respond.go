package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/stepflow-api/internal/errors"
	"github.com/yukikurage/stepflow-api/internal/middleware"
	"github.com/yukikurage/stepflow-api/internal/services"
)

// respondError maps the service error taxonomy onto API error responses.
// Unexpected errors are attached to the context so the request logger records them.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequestWithDetails(c, "Invalid input", validationErr.Fields)
	case errors.Is(err, services.ErrNotAuthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrUnauthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrStepLocked):
		apierrors.Conflict(c, apierrors.ErrCodeStepLocked, capitalize(err.Error()))
	case errors.Is(err, services.ErrInvitationNotAcceptable):
		apierrors.Conflict(c, apierrors.ErrCodeInvitationNotAcceptable, capitalize(err.Error()))
	case errors.Is(err, services.ErrAIServiceNotConfigured),
		errors.Is(err, services.ErrAINoStepsGenerated):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

func invalidBody(c *gin.Context) {
	apierrors.BadRequest(c, "Invalid request body")
}

func callerID(c *gin.Context) string {
	userID, _ := middleware.GetUserID(c)
	return userID
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
