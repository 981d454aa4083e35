package store

import (
	"errors"
	"fmt"
)

// Lookup and taxonomy errors shared by the user and role stores.
var (
	// ErrNotFound is the parent of every "no such document" error; the
	// entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrNilArgument is returned when a required argument is nil.
	ErrNilArgument = errors.New("argument cannot be nil")

	// ErrInvalidArgument is returned when an argument is present but unusable,
	// for example a blank role name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation is returned when an operation refers to state that
	// does not exist, such as adding a user to a role that was never created.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConcurrencyFailure is returned when an optimistic concurrency check
	// fails because another writer committed first.
	ErrConcurrencyFailure = errors.New("optimistic concurrency failure, object has been modified")

	// ErrDisposed is returned by every operation on a store after Close.
	ErrDisposed = errors.New("store has been closed")

	// ErrUserNotFound is returned by the user lookups.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrRoleNotFound indicates that the requested role does not exist in the store.
	ErrRoleNotFound = fmt.Errorf("%w: role", ErrNotFound)

	// ErrTokenNotFound indicates that the user holds no token for the
	// requested provider and name.
	ErrTokenNotFound = fmt.Errorf("%w: token", ErrNotFound)
)

// IsNotFoundError reports whether err is ErrNotFound or one of its
// entity-specific variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsArgumentError reports whether err is a nil or invalid argument failure.
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrNilArgument) || errors.Is(err, ErrInvalidArgument)
}

// ArgumentError names the parameter that failed argument validation.
type ArgumentError struct {
	Param string // The offending parameter (e.g., "user", "roleName")
	Err   error  // ErrNilArgument or ErrInvalidArgument
}

// Error implements the error interface for ArgumentError.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Param)
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NilArgument returns an ArgumentError for a missing required parameter.
func NilArgument(param string) error {
	return &ArgumentError{Param: param, Err: ErrNilArgument}
}

// InvalidArgument returns an ArgumentError for a present but unusable parameter.
func InvalidArgument(param string) error {
	return &ArgumentError{Param: param, Err: ErrInvalidArgument}
}

// StoreError records which store operation failed on which entity kind.
// Backend failures that are not concurrency conflicts surface wrapped in one.
type StoreError struct {
	Entity    string // "user", "role" or "token"
	Operation string // e.g. "create", "find", "query"
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap exposes the backend error so docstore sentinels still match.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for the given entity kind and operation.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
