package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/jackc/pgx/v5/pgconn"
)

// sqlStateClass describes how one SQLSTATE maps onto the docstore errors.
type sqlStateClass struct {
	sentinel error
	// label is empty for codes that need no extra context in the message.
	label string
	// object names the constraint or column involved.
	object func(*pgconn.PgError) string
}

func constraintName(e *pgconn.PgError) string { return e.ConstraintName }
func columnName(e *pgconn.PgError) string     { return e.ColumnName }

var sqlStates = map[string]sqlStateClass{
	// Two writers raced on the same (collection, id) insert.
	"23505": {sentinel: docstore.ErrConcurrency},
	"40001": {sentinel: docstore.ErrConcurrency},
	"23503": {docstore.ErrInvalidEntity, "foreign key violation", constraintName},
	"23514": {docstore.ErrInvalidEntity, "check constraint violation", constraintName},
	"23502": {docstore.ErrInvalidEntity, "not null violation", columnName},
}

// sqlState returns the SQLSTATE carried by err, or "" when err did not come
// from the server.
func sqlState(err error) (*pgconn.PgError, string) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, ""
	}
	return pgErr, pgErr.Code
}

// MapError translates driver errors into docstore errors so the session can
// tell conflicts and rejected documents apart from outages. Errors it does
// not recognize are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", docstore.ErrNotFound, err)
	}

	pgErr, code := sqlState(err)
	class, ok := sqlStates[code]
	if !ok {
		return err
	}
	if class.label == "" {
		return fmt.Errorf("%w: %v", class.sentinel, err)
	}
	return fmt.Errorf("%w: %s (%s): %v", class.sentinel, class.label, class.object(pgErr), err)
}
