package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the domain layer. Storage adapters wrap
// these rather than invent their own, so callers can match with errors.Is.
var (
	// ErrNotFound is returned when an owner, folder, feed or entry does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput is returned for requests that are malformed before validation runs
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed is returned when an entity fails its Validate method
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError reports which field of an entity failed validation and why.
// It implements the error interface.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
