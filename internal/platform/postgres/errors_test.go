package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedError error
		expectedMsg   string
	}{
		{
			name:          "nil_error",
			err:           nil,
			expectedError: nil,
		},
		{
			name:          "sql_no_rows",
			err:           sql.ErrNoRows,
			expectedError: store.ErrNotFound,
		},
		{
			name: "unique_violation",
			err: &pgconn.PgError{
				Code:           uniqueViolationCode,
				ConstraintName: "labels_label_key",
			},
			expectedError: store.ErrDuplicate,
		},
		{
			name: "check_constraint_violation",
			err: &pgconn.PgError{
				Code:           checkViolationCode,
				ConstraintName: "annotations_text_check",
			},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "annotations_text_check",
		},
		{
			name: "not_null_violation",
			err: &pgconn.PgError{
				Code:       notNullViolationCode,
				ColumnName: "text",
			},
			expectedError: store.ErrInvalidEntity,
			expectedMsg:   "not null violation",
		},
		{
			name:          "string_too_long",
			err:           &pgconn.PgError{Code: stringTooLongCode},
			expectedError: store.ErrInvalidEntity,
		},
		{
			name:          "invalid_text_representation",
			err:           &pgconn.PgError{Code: invalidTextRepresCode},
			expectedError: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)

			if tt.expectedError == nil {
				assert.NoError(t, result)
				return
			}
			require.Error(t, result)
			assert.ErrorIs(t, result, tt.expectedError)
			if tt.expectedMsg != "" {
				assert.Contains(t, result.Error(), tt.expectedMsg)
			}
		})
	}

	t.Run("unmapped_errors_pass_through", func(t *testing.T) {
		generic := errors.New("some other error")
		assert.Same(t, generic, MapError(generic))

		unknown := &pgconn.PgError{Code: "99999", Message: "unknown error"}
		assert.Equal(t, error(unknown), MapError(unknown))
	})

	t.Run("original_error_kept_in_chain", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: uniqueViolationCode}
		var target *pgconn.PgError
		require.True(t, errors.As(MapError(pgErr), &target))
		assert.Equal(t, uniqueViolationCode, target.Code)
		assert.ErrorIs(t, MapError(fmt.Errorf("insert: %w", sql.ErrNoRows)), store.ErrNotFound)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil_error",
			err:      nil,
			expected: false,
		},
		{
			name:     "unique_violation",
			err:      &pgconn.PgError{Code: uniqueViolationCode},
			expected: true,
		},
		{
			name:     "other_violation",
			err:      &pgconn.PgError{Code: checkViolationCode},
			expected: false,
		},
		{
			name:     "non_pg_error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "wrapped_unique_violation",
			err:      fmt.Errorf("context: %w", &pgconn.PgError{Code: uniqueViolationCode}),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUniqueViolation(tt.err))
		})
	}
}

func TestCheckRowsAffected(t *testing.T) {
	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		wantErr  error
		errorMsg string
	}{
		{
			name:     "nil_result",
			result:   nil,
			errorMsg: "nil result",
		},
		{
			name:     "zero_rows_with_specific_error",
			result:   mockResult{rowsAffected: 0},
			notFound: store.ErrLabelNotFound,
			wantErr:  store.ErrLabelNotFound,
		},
		{
			name:    "zero_rows_without_specific_error",
			result:  mockResult{rowsAffected: 0},
			wantErr: store.ErrNotFound,
		},
		{
			name:   "one_row_affected",
			result: mockResult{rowsAffected: 1},
		},
		{
			name:   "multiple_rows_affected",
			result: mockResult{rowsAffected: 5},
		},
		{
			name:     "error_getting_rows_affected",
			result:   mockResult{err: errors.New("db error")},
			errorMsg: "failed to get rows affected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRowsAffected(tt.result, tt.notFound)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errorMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
