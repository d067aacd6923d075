package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// ServiceError wraps an unexpected failure with the service and operation it came from.
type ServiceError struct {
	// Service is the failing service (e.g., "task", "project")
	Service string
	// Operation is the operation that failed (e.g., "create", "add_tag")
	Operation string
	// Err is the underlying error that caused the failure
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service %s failed: %v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrapError returns domain errors unchanged and wraps anything else in a ServiceError.
// A row rejected by a database constraint the domain did not anticipate is reported
// as a validation error.
func wrapError(service, operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicate) ||
		errors.Is(err, domain.ErrValidation) {
		return err
	}
	if errors.Is(err, store.ErrInvalidEntity) {
		return domain.NewValidationError("", "rejected by a data constraint", err)
	}
	return &ServiceError{Service: service, Operation: operation, Err: err}
}

// notFound converts a store not-found error into a domain NotFoundError for resource id.
func notFound(err error, resource, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewNotFoundError(resource, id)
	}
	return err
}

func newDependencyError(name string) error {
	return domain.NewValidationError(name, "cannot be nil", nil)
}
