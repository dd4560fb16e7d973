package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/annotate-api/internal/api/shared"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/service"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/phrazzld/annotate-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, generation.ErrTaskNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, generation.ErrInvalidRequest),
		errors.Is(err, generation.ErrUnknownProvider),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// The generator queue is saturated or shutting down
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrRunnerStopped):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError

	switch {
	// Not found errors
	case errors.Is(err, store.ErrAnnotationNotFound):
		return "Annotation not found"

	case errors.Is(err, store.ErrLabelNotFound):
		return "Label not found"

	case errors.Is(err, generation.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrAnnotationExists):
		return "Text already exists"

	case errors.Is(err, store.ErrLabelExists):
		return "Label already exists"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Bad request errors
	case errors.Is(err, service.ErrNoTargets):
		return "Either text_ids or search_criteria is required"

	case errors.Is(err, service.ErrNoLabelChanges):
		return "Either labels_to_add or labels_to_remove is required"

	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)

	case errors.Is(err, generation.ErrUnknownProvider):
		return "Unsupported provider"

	case errors.Is(err, generation.ErrInvalidRequest):
		return SanitizeValidationError(err)

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	// Saturation
	case errors.Is(err, task.ErrQueueFull):
		return "Generation queue is full, try again later"

	case errors.Is(err, task.ErrRunnerStopped):
		return "Service is shutting down"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'Request.Count' Error:Field validation for 'Count' failed on the 'gte' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Limits reported by the generation service are plain sentences after the sentinel.
	if prefix := generation.ErrInvalidRequest.Error() + ": "; strings.HasPrefix(errMsg, prefix) {
		return "Invalid request: " + strings.TrimPrefix(errMsg, prefix)
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status code and a safe message and writes the
// error response. fallback replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
