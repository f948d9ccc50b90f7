package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced user, movie, or genre does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInconsistentIndex is returned when a KNN model is queried with a
	// matrix other than the one it was fitted on.
	ErrInconsistentIndex = errors.New("model was fitted on a different interaction matrix")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
