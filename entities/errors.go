package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup or delete target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks programming errors such as an unknown relation.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Required builds the ValidationError used for blank required fields.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
