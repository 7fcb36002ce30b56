package release

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched by every OutOfRangeError.
	ErrOutOfRange = errors.New("position out of range")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// OutOfRangeError reports a registry position that does not exist.
type OutOfRangeError struct {
	Position int
	Len      int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("position %d out of range [0,%d)", e.Position, e.Len)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ValidationError reports a missing or unacceptable field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
