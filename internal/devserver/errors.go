package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// APIError is the error body returned by every endpoint. Clients read
// message and details.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func respond(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, APIError{Code: code, Message: message, Details: details})
}

func unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	respond(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, "")
}

func badRequest(c *gin.Context, message, details string) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidInput, message, details)
}

func notFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeNotFound, message, "")
}
