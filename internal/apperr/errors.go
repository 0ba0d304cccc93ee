// Package apperr defines the error taxonomy shared across the service.
// Handlers map these types onto HTTP status codes; everything else is
// treated as an internal failure.
package apperr

import "fmt"

// ValidationError reports one or more invalid input fields. Fields maps a
// field name to a human-readable message and always enumerates every
// violation, not just the first.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError from a field→message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NotFoundError indicates that the requested resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFound creates a NotFoundError for the given resource and identifier.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StorageError wraps an underlying I/O failure while reading or writing
// record or blob storage.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
