// Package apperr holds the error kinds shared by the service packages.
// Callers wrap them with context and the API maps them to status codes.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// NotFound wraps ErrNotFound with the missing resource
func NotFound(resource string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", resource, id, ErrNotFound)
}

// Invalid wraps ErrInvalidInput with a reason
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// Conflict wraps ErrConflict with a reason
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// FromQuery turns gorm.ErrRecordNotFound into a NotFound for resource and
// wraps anything else
func FromQuery(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource, id)
	}
	return fmt.Errorf("failed to load %s %v: %w", resource, id, err)
}
