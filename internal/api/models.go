package api

import (
	"strings"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/store"
)

// CreateAnnotationRequest is the body of POST /annotations.
type CreateAnnotationRequest struct {
	Text   string  `json:"text"   validate:"required"`
	Labels *string `json:"labels"`
}

// UpdateAnnotationRequest is the body of PUT /annotations/{id}. A missing or
// empty labels field clears the labels.
type UpdateAnnotationRequest struct {
	Labels *string `json:"labels"`
}

// SearchRequest filters annotations. Label conditions are comma separated.
type SearchRequest struct {
	Query         *string `json:"query"`
	ExcludeQuery  *string `json:"exclude_query"`
	Labels        *string `json:"labels"`
	ExcludeLabels *string `json:"exclude_labels"`
	UnlabeledOnly bool    `json:"unlabeled_only"`
	Page          int     `json:"page"     validate:"omitempty,gte=1"`
	PerPage       int     `json:"per_page" validate:"omitempty,gte=1,lte=1000"`
}

// Filter converts the request into a store filter.
func (r SearchRequest) Filter() store.AnnotationFilter {
	return store.AnnotationFilter{
		Query:         deref(r.Query),
		ExcludeQuery:  deref(r.ExcludeQuery),
		Labels:        domain.SplitLabels(deref(r.Labels)),
		ExcludeLabels: domain.SplitLabels(deref(r.ExcludeLabels)),
		UnlabeledOnly: r.UnlabeledOnly,
	}
}

// BulkLabelRequest sets the same labels on several annotations.
type BulkLabelRequest struct {
	TextIDs []int64 `json:"text_ids"`
	Labels  string  `json:"labels"`
}

// Validate rejects label strings that normalize to nothing.
func (r BulkLabelRequest) Validate() error {
	if len(r.TextIDs) == 0 {
		return domain.NewValidationError("text_ids", "cannot be empty", domain.ErrValidation)
	}
	if domain.NormalizeLabels(r.Labels) == "" {
		return domain.NewValidationError("labels", "must contain at least one label", domain.ErrEmptyContent)
	}
	return nil
}

// BulkUpdateLabelsRequest adds and removes labels on annotations selected
// either by id or by search criteria.
type BulkUpdateLabelsRequest struct {
	SearchCriteria *SearchRequest `json:"search_criteria"`
	TextIDs        []int64        `json:"text_ids"`
	LabelsToAdd    *string        `json:"labels_to_add"`
	LabelsToRemove *string        `json:"labels_to_remove"`
}

// Validate rejects an explicitly empty id list. The remaining rules are
// enforced by the annotation service.
func (r BulkUpdateLabelsRequest) Validate() error {
	if r.TextIDs != nil && len(r.TextIDs) == 0 {
		return domain.NewValidationError("text_ids", "cannot be empty", domain.ErrValidation)
	}
	return nil
}

// ImportTextsRequest is the body of POST /annotations/import-texts.
type ImportTextsRequest struct {
	Texts []string `json:"texts" validate:"required"`
}

// CreateLabelRequest is the body of POST /labels. ID is optional.
type CreateLabelRequest struct {
	ID          *int64  `json:"id"          validate:"omitempty,gte=1"`
	Label       string  `json:"label"       validate:"required"`
	Description *string `json:"description"`
	Groups      *string `json:"groups"`
}

// UpdateLabelRequest is the body of PUT /labels/{id}.
type UpdateLabelRequest struct {
	Label       string  `json:"label"       validate:"required"`
	Description *string `json:"description"`
	Groups      *string `json:"groups"`
}

// UpdatedCountResponse reports how many annotations a bulk operation changed.
type UpdatedCountResponse struct {
	UpdatedCount int `json:"updated_count"`
}

// ImportedCountResponse reports how many new annotations an import stored.
type ImportedCountResponse struct {
	ImportedCount int `json:"imported_count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StartGenerationResponse is returned when a generation task is registered.
type StartGenerationResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskListResponse lists the live generation tasks.
type TaskListResponse struct {
	Tasks []generation.Snapshot `json:"tasks"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
