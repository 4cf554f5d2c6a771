package handlers

import (
	"net/http"

	"tripplanner/internal/domain"
	"tripplanner/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	Suggestion any    `json:"suggestion,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	if v, ok := domain.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      v.Error(),
			Code:       "validation_error",
			Field:      v.Field,
			Suggestion: v.Suggestion,
			RequestID:  middleware.GetRequestID(c),
		})
		return
	}
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsLeg(err):
		respondError(c, http.StatusInternalServerError, "leg_error", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
