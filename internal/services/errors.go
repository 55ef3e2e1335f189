package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the target document (or a dependent resource)
// does not exist. It is always user-correctable and maps to a 404.
var ErrNotFound = errors.New("document not found")

// ErrDeleteTimeout is returned when the hard-delete transaction exceeds its
// bound. It is distinct from generic failure so callers can advise retrying
// or contacting support; the document may simply have too many related
// records.
var ErrDeleteTimeout = errors.New("delete operation timed out")

// Conflict reasons.
const (
	ConflictVersionMismatch = "version mismatch"
	ConflictVersionExists   = "version already exists"
)

// ConflictError is returned when a mutation loses an optimistic-concurrency
// race. It maps to a 409.
type ConflictError struct {
	// Reason is one of the Conflict* constants.
	Reason string

	// CurrentVersion is the document's actual stored version at the time
	// of the conflict, so the caller can reconcile without re-fetching.
	CurrentVersion string
}

func (e *ConflictError) Error() string {
	if e.CurrentVersion != "" {
		return fmt.Sprintf("%s (current version: %s)", e.Reason, e.CurrentVersion)
	}
	return e.Reason
}

// ValidationError wraps malformed input caught before any mutation. It maps
// to a 400.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
