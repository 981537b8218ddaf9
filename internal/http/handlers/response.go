// Package handlers implements the Gin handlers for the public API:
// withdrawals, transaction status, inventory, webhook subscriptions, and
// the operator surface. Handlers stay transport-thin: they bind and
// validate input, call a service interface, and translate sentinel errors
// into the shared envelope below.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardvault/card-vault-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope every endpoint returns on failure.
// Code is stable and machine-readable (see errors.go); RequestID echoes
// X-Request-ID so a caller can quote it against server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with the envelope. 5xx responses are also
// logged through the request-scoped logger; 4xx are the caller's problem
// and stay out of the error stream.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail for the router's NoRoute/NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
