package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing property or index document.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a malformed request. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrConflict signals an optimistic write conflict on a document revision.
	ErrConflict = errors.New("write conflict")
	// ErrIndexUnavailable signals a transient index store failure. Retried with backoff.
	ErrIndexUnavailable = errors.New("index store unavailable")
	// ErrSourceUnavailable signals a transient property source failure.
	ErrSourceUnavailable = errors.New("property source unavailable")
	// ErrPassRunning signals that a named sync pass is already in progress.
	ErrPassRunning = errors.New("sync pass already running")
	// ErrUnknownPass signals an unregistered sync pass name.
	ErrUnknownPass = errors.New("unknown sync pass")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a field-level validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError wraps ErrConflict with the revision observed at write time.
type ConflictError struct {
	ObservedRevision int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: observed revision %d", ErrConflict.Error(), e.ObservedRevision)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
