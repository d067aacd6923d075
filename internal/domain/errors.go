package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared across the application. Typed errors below match these
// with errors.Is so callers can classify without knowing the concrete type.
var (
	// ErrNotFound is returned when a resource is missing or owned by another user.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate is returned when a per-user unique name or label is already taken.
	ErrDuplicate = errors.New("duplicate resource")

	// ErrValidation is returned when input is malformed or an operation would
	// produce an illegal state.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated is the root of every authentication failure.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Resource names used in error details.
const (
	ResourceUser    = "user"
	ResourceProject = "project"
	ResourceTag     = "tag"
	ResourceTask    = "task"
	ResourceTaskTag = "task_tag"
)

// NotFoundError identifies the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and identifier.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateError identifies the resource and field whose uniqueness was violated.
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

func NewDuplicateError(resource, field, value string) *DuplicateError {
	return &DuplicateError{Resource: resource, Field: field, Value: value}
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Resource, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError. err may be nil or a more specific
// cause; either way the result matches ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
