package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrEntityNotFound = fmt.Errorf("%w: entity", ErrNotFound)

	ErrUnknownRegion      = errors.New("unknown region")
	ErrInvalidBand        = errors.New("invalid etr band")
	ErrUnknownCalculation = errors.New("unknown calculation type")
)

// NewNotFoundError builds a not-found error for a resource and id.
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
