package types

import (
	"errors"
	"fmt"
)

// Domain errors for type validation
var (
	// ErrValidation marks input that breaks a field constraint, see Validationf
	ErrValidation = errors.New("validation failed")

	// Search result errors
	ErrInvalidBookID    = errors.New("invalid book ID")
	ErrInvalidScore     = errors.New("score must be in (0, 1]")
	ErrMetadataMismatch = errors.New("metadata book ID does not match result")
	ErrEmptyContent     = errors.New("content cannot be empty")
)

// Validationf returns an error that matches ErrValidation and reads only the formatted message
func Validationf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }
