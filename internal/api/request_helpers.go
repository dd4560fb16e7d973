package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/annotate-api/internal/api/shared"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
)

// getPathInt64 extracts a positive integer id from the URL path parameters.
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handlePathID extracts an integer path id and writes a 400 response when it
// is missing or malformed.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string, log *slog.Logger) (int64, bool) {
	id, err := getPathInt64(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// getTaskID returns the trimmed task id path parameter.
func getTaskID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "taskID"))
}

// decodeAndValidate reads the JSON body into v and validates it. On failure
// it writes a 400 response and reports false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	if err := shared.DecodeJSON(w, r, v); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		message := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			message = "Request body is required"
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, message)
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		log.Warn("validation error", slog.String("error", err.Error()))
		message := SanitizeValidationError(err)
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			message = GetSafeErrorMessage(err)
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, message)
		return false
	}
	return true
}
