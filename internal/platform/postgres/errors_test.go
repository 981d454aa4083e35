package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/platform/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// Mock PgError creation helper
func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		Detail:         "error details",
		SchemaName:     "public",
		TableName:      "documents",
		ColumnName:     "data",
		ConstraintName: "documents_pkey",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "no rows",
			err:      sql.ErrNoRows,
			expected: docstore.ErrNotFound,
		},
		{
			name:     "wrapped no rows",
			err:      fmt.Errorf("query: %w", sql.ErrNoRows),
			expected: docstore.ErrNotFound,
		},
		{
			name:     "unique violation",
			err:      newPgError("23505"),
			expected: docstore.ErrConcurrency,
		},
		{
			name:     "serialization failure",
			err:      newPgError("40001"),
			expected: docstore.ErrConcurrency,
		},
		{
			name:     "foreign key violation",
			err:      newPgError("23503"),
			expected: docstore.ErrInvalidEntity,
		},
		{
			name:     "check violation",
			err:      newPgError("23514"),
			expected: docstore.ErrInvalidEntity,
		},
		{
			name:     "not null violation",
			err:      newPgError("23502"),
			expected: docstore.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.expected)
		})
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.MapError(nil))

	generic := errors.New("connection reset")
	assert.Same(t, generic, postgres.MapError(generic))

	syntax := newPgError("42601")
	assert.Equal(t, error(syntax), postgres.MapError(syntax))
}

func TestMapErrorKeepsConstraintName(t *testing.T) {
	t.Parallel()

	mapped := postgres.MapError(newPgError("23514"))
	assert.Contains(t, mapped.Error(), "documents_pkey")
}

func TestMapErrorWrapped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
		contains string
	}{
		{
			name:     "wrapped unique violation",
			err:      fmt.Errorf("insert: %w", newPgError("23505")),
			expected: docstore.ErrConcurrency,
		},
		{
			name:     "not null names the column",
			err:      fmt.Errorf("update: %w", newPgError("23502")),
			expected: docstore.ErrInvalidEntity,
			contains: "not null violation (data)",
		},
		{
			name:     "foreign key names the constraint",
			err:      newPgError("23503"),
			expected: docstore.ErrInvalidEntity,
			contains: "foreign key violation (documents_pkey)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.expected)
			assert.NotErrorIs(t, mapped, docstore.ErrNotFound)
			if tt.contains != "" {
				assert.Contains(t, mapped.Error(), tt.contains)
			}
		})
	}
}

func TestDialect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "postgres", postgres.Dialect.Name)
	assert.Equal(t, "$3", postgres.Dialect.Placeholder(3))
	assert.Contains(t, docstore.Drivers(), postgres.DriverName)
}
