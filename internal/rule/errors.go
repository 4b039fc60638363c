package rule

import (
	"errors"
	"fmt"
)

// ValidationError reports a condition that fails the grammar check.
//
// Validation failures include:
//   - No recognized operator (e.g. "pressure >= 1000" - >= is unsupported)
//   - Empty field name or empty literal
//   - A literal that does not parse as a floating-point number
//
// ValidationError is returned at rule-add time; a rule that reaches storage
// always has a well-formed condition.
type ValidationError struct {
	// Condition is the raw condition string that failed validation.
	Condition string

	// Reason is a human-readable description of the failure.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid condition %q: %s", e.Condition, e.Reason)
}

// IsValidationError returns true if the error is a condition validation
// failure. Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newValidationError(condition, reason string) *ValidationError {
	return &ValidationError{Condition: condition, Reason: reason}
}
