// Package response centralizes HTTP response shapes and helpers.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/maxviazov/taskboard-service/internal/service"
)

// RequestIDKey is the gin context key under which the request id is stored.
const RequestIDKey = "request_id"

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
	RequestID   string               `json:"request_id,omitempty"`
}

// errorRule maps one sentinel to a status. Only rules with expose set echo err.Error().
type errorRule struct {
	target error
	status int
	code   string
	expose bool
}

// Checked in order; the first match wins.
var errorRules = []errorRule{
	{pagination.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", true},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", true},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", false},
	{repository.ErrNotFound, http.StatusNotFound, "not_found", false},
	{repository.ErrAlreadyExists, http.StatusConflict, "already_exists", false},
	{repository.ErrConflict, http.StatusConflict, "conflict", false},
}

// MapError converts a domain or infrastructure error into an HTTP status and payload.
// Unknown errors never leak their text to clients.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}
	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}
	for _, r := range errorRules {
		if !errors.Is(err, r.target) {
			continue
		}
		p := ErrorPayload{Error: r.code}
		if r.expose {
			p.Message = err.Error()
		}
		return r.status, p
	}
	return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
}

// WriteError aborts the request with the mapped error envelope. err is recorded on the
// context for the access log, and the request id is echoed so clients can quote it.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	payload.RequestID = c.GetString(RequestIDKey)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// WriteNoContent answers 204 for mutations that return nothing.
func WriteNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
