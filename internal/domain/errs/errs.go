package errs

import (
	"errors"
	"fmt"
)

// Error kinds shared by every engine operation. Domain packages wrap these
// with %w so callers can classify failures with errors.Is.
var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientFunds      = errors.New("insufficient funds")

	// ErrDuplicateState also matches ErrInvalidStateTransition.
	ErrDuplicateState = fmt.Errorf("%w: already in requested state", ErrInvalidStateTransition)
)

// Validation builds a validation error carrying a readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbidden builds a forbidden error naming the refused action.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
