package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent lookup failures the caller may want to branch on.
// These are distinct from backend transport errors.
var (
	// ErrNotFound indicates no backend produced a record for the query.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the query was rejected before any backend was asked.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedField indicates a backend cannot search on the requested field.
	ErrUnsupportedField = errors.New("unsupported field")

	// ErrBackendDisabled indicates the backend is switched off in configuration.
	ErrBackendDisabled = errors.New("backend disabled")

	// ErrBackendClosed indicates a lookup on a backend that has been closed.
	ErrBackendClosed = errors.New("backend closed")

	// ErrNoBackends indicates every backend is disabled or failed to initialise.
	ErrNoBackends = errors.New("no backends available")

	// ErrConfig indicates an invalid configuration value.
	ErrConfig = errors.New("invalid configuration")
)

// BackendError wraps a failure raised while talking to a backend.
// Transient marks connection-down or timeout failures that are worth retrying.
type BackendError struct {
	Backend   Backend
	Op        string
	Err       error
	Transient bool
}

func (e *BackendError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s [%s]: %v", e.Backend, e.Op, kind, e.Err)
}

// Unwrap supports errors.Is and errors.As on the underlying failure.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError creates a BackendError.
func NewBackendError(backend Backend, op string, err error, transient bool) *BackendError {
	return &BackendError{Backend: backend, Op: op, Err: err, Transient: transient}
}

// IsTransient reports whether err is a BackendError marked as transient.
func IsTransient(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Transient
	}
	return false
}
