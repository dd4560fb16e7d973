package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/annotate-api/internal/api/shared"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/service"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/phrazzld/annotate-api/internal/task"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"annotation not found", store.ErrAnnotationNotFound, http.StatusNotFound},
		{"wrapped label not found", fmt.Errorf("load: %w", store.ErrLabelNotFound), http.StatusNotFound},
		{"task not found", generation.ErrTaskNotFound, http.StatusNotFound},
		{"duplicate text", store.ErrAnnotationExists, http.StatusConflict},
		{"validation error", domain.NewValidationError("text", "cannot be empty", domain.ErrEmptyContent), http.StatusBadRequest},
		{"no targets", service.ErrNoTargets, http.StatusBadRequest},
		{"invalid generation request", fmt.Errorf("%w: count", generation.ErrInvalidRequest), http.StatusBadRequest},
		{"unknown provider", generation.ErrUnknownProvider, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"queue full", fmt.Errorf("submit: %w", task.ErrQueueFull), http.StatusServiceUnavailable},
		{"runner stopped", task.ErrRunnerStopped, http.StatusServiceUnavailable},
		{"service error", &service.ServiceError{Service: "annotation", Operation: "search", Err: errors.New("db down")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"annotation not found", store.ErrAnnotationNotFound, "Annotation not found"},
		{"label not found", store.ErrLabelNotFound, "Label not found"},
		{"task not found", generation.ErrTaskNotFound, "Task not found"},
		{"label exists", store.ErrLabelExists, "Label already exists"},
		{"no label changes", service.ErrNoLabelChanges, "Either labels_to_add or labels_to_remove is required"},
		{"field error", domain.NewValidationError("label", "cannot contain commas", domain.ErrValidation), "Invalid label: cannot contain commas"},
		{
			"validator message",
			fmt.Errorf("%w: %s", generation.ErrInvalidRequest,
				"Key: 'Request.Count' Error:Field validation for 'Count' failed on the 'gte' tag"),
			"Invalid Count: too small",
		},
		{
			"limit message",
			fmt.Errorf("%w: count must not exceed 1000", generation.ErrInvalidRequest),
			"Invalid request: count must not exceed 1000",
		},
		{"internal details", errors.New("pq: password authentication failed for user admin"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}
