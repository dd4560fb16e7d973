package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNoTargets indicates a bulk update named neither ids nor search criteria.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoTargets = fmt.Errorf("%w: either text_ids or search_criteria is required", domain.ErrValidation)

	// ErrNoLabelChanges indicates a bulk update with nothing to add or remove.
	// API layer should map this to HTTP 400 Bad Request.
	ErrNoLabelChanges = fmt.Errorf("%w: labels_to_add or labels_to_remove is required", domain.ErrValidation)
)

// ServiceError wraps unexpected errors from a service operation with context.
type ServiceError struct {
	// Service is the service that failed (e.g., "annotation", "label")
	Service string
	// Operation is the operation that failed (e.g., "create", "bulk_update_labels")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrapError returns expected conditions (not found, duplicate, validation)
// unchanged and wraps everything else in a ServiceError.
func wrapError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, domain.ErrValidation) {
		return err
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
