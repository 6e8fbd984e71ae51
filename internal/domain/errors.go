package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownCity      = errors.New("unknown city")
	ErrInvalidTable     = errors.New("invalid lookup table")
	ErrModelArtifact    = errors.New("invalid model artifact")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrRateLimited      = errors.New("rate limited")
)

// FieldError identifies the input field that failed validation
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Unwrap lets callers match field errors with errors.Is(err, ErrInvalidInput)
func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// NewFieldError creates a FieldError
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
