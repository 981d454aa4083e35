package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConcurrency is matched by every optimistic concurrency conflict,
	// including *ConflictError values returned from Commit.
	ErrConcurrency = errors.New("concurrency conflict")

	// ErrNonUniqueObject is returned when a different instance is stored
	// under an id the session already tracks.
	ErrNonUniqueObject = errors.New("a different object with the same id is already tracked")

	// ErrNotTracked is returned when deleting or inspecting an entity the
	// session has never seen.
	ErrNotTracked = errors.New("entity is not tracked by this session")

	// ErrMultipleResults is returned by SingleOrDefault when more than one
	// document matches.
	ErrMultipleResults = errors.New("sequence contains more than one matching element")

	// ErrInvalidEntity is returned for entities that are not non-nil pointers
	// or that carry an empty id.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTypeMismatch is returned when a tracked document is requested as a
	// different Go type than the one it was tracked with.
	ErrTypeMismatch = errors.New("tracked entity has a different type")
)

// ConflictError describes a version mismatch detected while committing.
// Actual is 0 when the document no longer exists.
type ConflictError struct {
	Collection string
	ID         string
	Expected   int64
	Actual     int64
}

// Error implements the error interface for ConflictError.
func (e *ConflictError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("concurrency conflict on %s/%s: document already exists", e.Collection, e.ID)
	}
	return fmt.Sprintf(
		"concurrency conflict on %s/%s: expected version %d, found %d",
		e.Collection,
		e.ID,
		e.Expected,
		e.Actual,
	)
}

// Is makes every ConflictError match ErrConcurrency.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConcurrency
}

// IsConcurrencyError reports whether err is an optimistic concurrency conflict.
func IsConcurrencyError(err error) bool {
	return errors.Is(err, ErrConcurrency)
}
