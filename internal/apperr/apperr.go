// Package apperr defines the error kinds surfaced to callers of the ledger.
//
// Domain packages wrap these kinds in their own sentinels so that
// transport layers can classify any error with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both absent records and records owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRange is returned when a date range starts after it ends.
	ErrInvalidRange = errors.New("invalid range")
	// ErrConflict is returned when a write would break a referential invariant.
	ErrConflict = errors.New("conflict")
	// ErrValidation is the kind of every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError for the given field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
