package valueobject

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrorKind classifies why a value was rejected.
type ErrorKind string

const (
	KindInvalidFormat ErrorKind = "INVALID_FORMAT"
	KindEmpty         ErrorKind = "EMPTY"
	KindOutOfRange    ErrorKind = "OUT_OF_RANGE"
)

// ValidationError is returned by value object constructors when the input
// does not satisfy the value's rule.
type ValidationError struct {
	Field   string
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field string, kind ErrorKind, msg string) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Message: msg}
}
