package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		isNotFound  bool
		isDuplicate bool
	}{
		{name: "nil error", err: nil},
		{name: "generic error", err: errors.New("some error")},
		{name: "ErrNotFound", err: ErrNotFound, isNotFound: true},
		{name: "wrapped annotation not found", err: fmt.Errorf("get: %w", ErrAnnotationNotFound), isNotFound: true},
		{name: "label not found", err: ErrLabelNotFound, isNotFound: true},
		{name: "ErrDuplicate", err: ErrDuplicate, isDuplicate: true},
		{name: "annotation exists", err: fmt.Errorf("create: %w", ErrAnnotationExists), isDuplicate: true},
		{name: "label exists", err: ErrLabelExists, isDuplicate: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.isNotFound, IsNotFoundError(tc.err))
			assert.Equal(t, tc.isDuplicate, IsDuplicateError(tc.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("annotation", "search", "query failed", cause)

	assert.Equal(t, "search operation on annotation failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("label", "list", "scan failed", nil)
	assert.Equal(t, "list operation on label failed: scan failed", bare.Error())
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, PerPage: 50}.Offset())
	assert.Equal(t, 100, Page{Number: 3, PerPage: 50}.Offset())
	assert.Equal(t, 0, Page{Number: 0, PerPage: 50}.Offset())
}
