// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel categories. Wrap them with fmt.Errorf("...: %w", ...) so callers
// can classify with errors.Is while keeping a human-readable reason.
var (
	// ErrNotFound: a referenced audit, item, location or record does not
	// exist, or an item is inactive where an active one is required.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the operation is illegal for the current audit
	// status (scanning or closing a closed audit).
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation: malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict: a uniqueness conflict the caller should see (duplicate
	// item code, double disposal). The scan race on the audit_scans unique
	// constraint is deliberately NOT surfaced as this; the engine absorbs
	// it and returns the existing scan.
	ErrConflict = errors.New("conflict")
)

// NotFound returns an ErrNotFound wrapping the formatted message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// InvalidState returns an ErrInvalidState wrapping the formatted message.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

// Validation returns an ErrValidation wrapping the formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Conflict returns an ErrConflict wrapping the formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}
