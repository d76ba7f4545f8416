package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Codes carried in the "code" field of every error body
const (
	ErrCodeUnauthorized            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeConflict                = "CONFLICT"
	ErrCodeStepLocked              = "STEP_LOCKED"
	ErrCodeInvitationNotAcceptable = "INVITATION_NOT_ACCEPTABLE"
	ErrCodeInternalError           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable      = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited             = "RATE_LIMITED"
)

// APIError is the JSON body of every non-2xx response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// respond writes an APIError, using fallback when message is empty
func respond(c *gin.Context, status int, code, message, fallback string, details interface{}) {
	if message == "" {
		message = fallback
	}
	c.JSON(status, APIError{Code: code, Message: message, Details: details})
}

func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, "Authentication required", nil)
}

func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, ErrCodeForbidden, message, "Access denied", nil)
}

func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeNotFound, message, "Resource not found", nil)
}

func BadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidInput, message, "Invalid request", nil)
}

// BadRequestWithDetails reports per-field validation failures in details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidInput, message, "Invalid request", details)
}

// Conflict sends a 409. An empty code means a generic CONFLICT.
func Conflict(c *gin.Context, code, message string) {
	if code == "" {
		code = ErrCodeConflict
	}
	respond(c, http.StatusConflict, code, message, "Resource conflict", nil)
}

func InternalError(c *gin.Context, message string) {
	respond(c, http.StatusInternalServerError, ErrCodeInternalError, message, "Internal server error", nil)
}

func ServiceUnavailable(c *gin.Context, message string) {
	respond(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message, "Service temporarily unavailable", nil)
}

func TooManyRequests(c *gin.Context, message string) {
	respond(c, http.StatusTooManyRequests, ErrCodeRateLimited, message, "Too many requests", nil)
}
