package application

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// NotFoundError reports a referenced resource that does not exist.
type NotFoundError struct {
	Resource string
	Key      string
	Value    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Key, e.Value)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func userNotFound(id string) *NotFoundError {
	return &NotFoundError{Resource: "User", Key: "ID", Value: id}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is already taken", e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func emailConflict(email string) *ConflictError {
	return &ConflictError{Field: "email", Value: email}
}
