package common

import (
	"errors"
	"fmt"
)

// Domain errors - use errors.Is() to check
var (
	ErrInternal   = errors.New("internal error")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")

	// ErrStoreUnavailable marks infrastructure failures of the record store or
	// queue. Distinct from ErrNotFound: a missing record is a normal outcome, an
	// unreachable store is not.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrJobNotFound = fmt.Errorf("job %w", ErrNotFound)

	ErrValidation = errors.New("validation error")
)

// WrapStoreUnavailable wraps an infrastructure error with operation context.
func WrapStoreUnavailable(operation string, err error) error {
	return fmt.Errorf("%s: %w", operation, errors.Join(ErrStoreUnavailable, err))
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStoreUnavailable checks if error is an infrastructure failure
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
