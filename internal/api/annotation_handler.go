package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/annotate-api/internal/api/shared"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/service"
)

// AnnotationService is the subset of the annotation use cases the HTTP layer needs.
type AnnotationService interface {
	Create(ctx context.Context, text, labels string) (*domain.Annotation, error)
	Get(ctx context.Context, id int64) (*domain.Annotation, error)
	UpdateLabels(ctx context.Context, id int64, labels string) (*domain.Annotation, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, params service.SearchParams) (*service.SearchResult, error)
	BulkLabel(ctx context.Context, ids []int64, labels string) (int, error)
	BulkUpdateLabels(ctx context.Context, params service.BulkUpdateParams) (*service.BulkUpdateResult, error)
	ImportTexts(ctx context.Context, texts []string) (int, error)
	ImportLabeled(ctx context.Context, items []service.LabeledText) (int, error)
}

// AnnotationHandler handles annotation HTTP requests.
type AnnotationHandler struct {
	annotations AnnotationService
	logger      *slog.Logger
}

// NewAnnotationHandler creates a new AnnotationHandler.
func NewAnnotationHandler(annotations AnnotationService, logger *slog.Logger) *AnnotationHandler {
	if annotations == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("annotation service cannot be nil for AnnotationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotationHandler{
		annotations: annotations,
		logger:      logger.With(slog.String("component", "annotation_handler")),
	}
}

// Create handles POST /annotations.
func (h *AnnotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAnnotationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	a, err := h.annotations.Create(r.Context(), req.Text, deref(req.Labels))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create annotation")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, a)
}

// Get handles GET /annotations/{id}.
func (h *AnnotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	a, err := h.annotations.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get annotation")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, a)
}

// UpdateLabels handles PUT /annotations/{id}.
func (h *AnnotationHandler) UpdateLabels(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateAnnotationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	a, err := h.annotations.UpdateLabels(r.Context(), id, deref(req.Labels))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update annotation")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, a)
}

// Delete handles DELETE /annotations/{id}.
func (h *AnnotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.annotations.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete annotation")
		return
	}
	shared.RespondNoContent(w)
}

// Search handles POST /annotations/search.
func (h *AnnotationHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.annotations.Search(r.Context(), service.SearchParams{
		Filter:  req.Filter(),
		Page:    req.Page,
		PerPage: req.PerPage,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search annotations")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// BulkLabel handles POST /annotations/bulk-label.
func (h *AnnotationHandler) BulkLabel(w http.ResponseWriter, r *http.Request) {
	var req BulkLabelRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.annotations.BulkLabel(r.Context(), req.TextIDs, req.Labels)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to label annotations")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UpdatedCountResponse{UpdatedCount: updated})
}

// BulkUpdateLabels handles POST /annotations/bulk-update-labels.
func (h *AnnotationHandler) BulkUpdateLabels(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateLabelsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	params := service.BulkUpdateParams{
		IDs:    req.TextIDs,
		Add:    deref(req.LabelsToAdd),
		Remove: deref(req.LabelsToRemove),
	}
	if req.SearchCriteria != nil {
		criteria := req.SearchCriteria.Filter()
		params.Criteria = &criteria
	}

	result, err := h.annotations.BulkUpdateLabels(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update labels")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ImportTexts handles POST /annotations/import-texts.
func (h *AnnotationHandler) ImportTexts(w http.ResponseWriter, r *http.Request) {
	var req ImportTextsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	imported, err := h.annotations.ImportTexts(r.Context(), req.Texts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import texts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ImportedCountResponse{ImportedCount: imported})
}
