package progress

import (
	"errors"
	"fmt"
)

// Typed failures surfaced to the caller. Handlers map these onto HTTP
// status codes; nothing here is retried internally.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrPersistence       = errors.New("persistence failure")
)

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
