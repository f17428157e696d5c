package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Curriculum and progress errors
var (
	ErrCurriculumNotFound     = errors.New("curriculum not found")
	ErrCourseNotFound         = errors.New("course not found")
	ErrRecordNotFound         = errors.New("course record not found")
	ErrGoalNotFound           = errors.New("academic goal not found")
	ErrPrerequisitesNotMet    = errors.New("mandatory prerequisites not met")
	ErrCurriculumInconsistent = errors.New("curriculum is inconsistent")
	ErrBatchContradiction     = errors.New("selected courses contradict the curriculum order")
)

// ValidationError reports malformed input for a single named field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NotFoundError reports an unknown course, curriculum, record or goal.
type NotFoundError struct {
	Resource string
	ID       interface{}
	// Kind is the specific sentinel, e.g. ErrCourseNotFound
	Kind error
}

// NewNotFoundError creates a NotFoundError. kind may be nil.
func NewNotFoundError(kind error, resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id, Kind: kind}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// Unwrap exposes both the generic and the specific sentinel.
func (e *NotFoundError) Unwrap() []error {
	if e.Kind == nil {
		return []error{ErrResourceNotFound}
	}
	return []error{ErrResourceNotFound, e.Kind}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewAlreadyExistsError creates a new custom error for a duplicate resource with a message
func NewAlreadyExistsError(message string) error {
	return &CustomError{
		Err:     ErrResourceAlreadyExists,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
