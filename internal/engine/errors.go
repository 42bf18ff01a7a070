package engine

import (
	"errors"
	"fmt"
)

// ErrCodeValidation is the code carried by ValidationError.
const ErrCodeValidation = "VALIDATION"

// ValidationError reports a rejected submission. It is always returned
// before any state is mutated.
type ValidationError struct {
	// Field is the offending request field ("Name", "Pattern", "Age").
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrCodeValidation, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrCodeValidation, e.Message)
}

// IsValidationError returns true if err is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
