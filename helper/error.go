package helper

import (
	"errors"
	"fmt"
)

// Error taxonomy for the discovery engine. Callers match these with
// errors.Is; every error returned by the library wraps exactly one of them
// (or is a plain wrapped storage/internal failure).
var (
	// ErrNotFound marks an unknown resource, edge or hypothesis id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameter marks an out-of-range caller parameter, e.g. hops
	// outside {1,2} or maxHops < 1. Not retryable.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDependencyUnavailable marks an unreachable external dependency
	// (similarity provider, database). May be retried with backoff.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrStorage marks a read/write failure against the store. Any
	// transaction in flight has been rolled back, never partially applied.
	ErrStorage = errors.New("storage failure")
	// ErrInternal wraps unexpected failures that fit no other category.
	ErrInternal = errors.New("internal error")
)

// NewError wraps an error with the operation context in which it occurred
func NewError(context string, err error) error {
	return fmt.Errorf("error %v: %w", context, err)
}

// NewErrorKind wraps an error with an operation context and one of the
// taxonomy sentinels so it can be matched with errors.Is.
func NewErrorKind(context string, kind error, err error) error {
	if err == nil {
		return fmt.Errorf("error %v: %w", context, kind)
	}
	return fmt.Errorf("error %v: %w: %w", context, kind, err)
}
