package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/annotate-api/internal/api/shared"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
)

// LabelService manages the label catalogue.
type LabelService interface {
	Create(ctx context.Context, id int64, name string, description, groups *string) (*domain.Label, error)
	List(ctx context.Context) ([]*domain.Label, error)
	Get(ctx context.Context, id int64) (*domain.Label, error)
	Update(ctx context.Context, id int64, name string, description, groups *string) (*domain.Label, error)
	Delete(ctx context.Context, id int64) error
}

// StatsService summarizes the annotation store.
type StatsService interface {
	Get(ctx context.Context) (*domain.SystemStats, error)
}

// LabelHandler handles label catalogue and statistics requests.
type LabelHandler struct {
	labels LabelService
	stats  StatsService
	logger *slog.Logger
}

// NewLabelHandler creates a new LabelHandler.
func NewLabelHandler(labels LabelService, stats StatsService, logger *slog.Logger) *LabelHandler {
	if labels == nil || stats == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("label and stats services cannot be nil for LabelHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelHandler{
		labels: labels,
		stats:  stats,
		logger: logger.With(slog.String("component", "label_handler")),
	}
}

// Create handles POST /labels.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLabelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var id int64
	if req.ID != nil {
		id = *req.ID
	}

	l, err := h.labels.Create(r.Context(), id, req.Label, req.Description, req.Groups)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create label")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, l)
}

// List handles GET /labels.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	labels, err := h.labels.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list labels")
		return
	}
	if labels == nil {
		labels = []*domain.Label{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, labels)
}

// Get handles GET /labels/{id}.
func (h *LabelHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	l, err := h.labels.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get label")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, l)
}

// Update handles PUT /labels/{id}.
func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateLabelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	l, err := h.labels.Update(r.Context(), id, req.Label, req.Description, req.Groups)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update label")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, l)
}

// Delete handles DELETE /labels/{id}.
func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.labels.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete label")
		return
	}
	shared.RespondNoContent(w)
}

// Stats handles GET /stats.
func (h *LabelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Get(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "Text annotation API is running",
	})
}
