package store

import (
	"fmt"
	"strings"
)

// ResultError is one reason an identity operation failed.
type ResultError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the outcome of a mutating identity operation. Expected failures
// such as concurrency conflicts or duplicate names are reported here instead
// of as Go errors so that callers can choose to retry, reload or surface them.
type Result struct {
	Succeeded bool
	Errors    []ResultError
}

// Success returns a successful result.
func Success() Result {
	return Result{Succeeded: true}
}

// Failed returns a failed result carrying the given errors.
func Failed(errs ...ResultError) Result {
	return Result{Errors: errs}
}

// HasCode reports whether the result carries an error with the given code.
func (r Result) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Err converts a failed result into an error, or returns nil on success.
// A result carrying a ConcurrencyFailure matches ErrConcurrencyFailure.
func (r Result) Err() error {
	if r.Succeeded {
		return nil
	}
	return &ResultFailure{Errors: r.Errors}
}

// String renders the result for logs.
func (r Result) String() string {
	if r.Succeeded {
		return "Succeeded"
	}
	codes := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		codes[i] = e.Code
	}
	return "Failed : " + strings.Join(codes, ",")
}

// ResultFailure is the error form of a failed Result.
type ResultFailure struct {
	Errors []ResultError
}

// Error implements the error interface for ResultFailure.
func (e *ResultFailure) Error() string {
	if len(e.Errors) == 0 {
		return "identity operation failed"
	}
	descs := make([]string, len(e.Errors))
	for i, re := range e.Errors {
		descs[i] = re.Description
	}
	return fmt.Sprintf("identity operation failed: %s", strings.Join(descs, "; "))
}

// Is lets errors.Is match a concurrency failure result against
// ErrConcurrencyFailure.
func (e *ResultFailure) Is(target error) bool {
	if target != ErrConcurrencyFailure {
		return false
	}
	for _, re := range e.Errors {
		if re.Code == CodeConcurrencyFailure {
			return true
		}
	}
	return false
}
