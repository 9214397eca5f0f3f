package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a form or plan does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrNoActiveForm indicates no form is currently published.
	ErrNoActiveForm = errors.New("no active form")
)

// ValidationError blocks an operation before any side effect happens.
// It can carry several messages.
type ValidationError struct {
	// Entity is what failed validation, e.g. "submission" or "form".
	Entity string

	// Errors contains the validation messages.
	Errors []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError appends a message.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors reports whether any message was added.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates an empty ValidationError for entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// UploadError reports that a document could not be persisted to blob storage.
// The submission attempt is abandoned and may be retried.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
