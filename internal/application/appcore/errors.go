package appcore

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidID        = errors.New("invalid ID")
	ErrEmptyField       = errors.New("required field is empty")

	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrAccessNotFound = errors.New("access record not found")
	ErrPolicyNotFound = errors.New("refund policy not found")

	// Conflict errors
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("resource already exists")

	// Infrastructure errors
	ErrEventStoreError = errors.New("event store error")
	ErrEventBusError   = errors.New("event bus error")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError represents a "not found" error for a specific resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Unwrap makes the error match errors.Is(err, ErrNotFound)
func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// ConflictError represents a conflict error
type ConflictError struct {
	Resource string
	Reason   string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// Unwrap makes the error match errors.Is(err, ErrConflict)
func (e ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a ConflictError
func NewConflictError(resource, reason string) error {
	return &ConflictError{
		Resource: resource,
		Reason:   reason,
	}
}

// RepositoryError wraps a storage failure with the operation that hit it
type RepositoryError struct {
	Op  string
	Err error
}

func (e RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying storage error
func (e RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a RepositoryError
func NewRepositoryError(op string, err error) error {
	return &RepositoryError{Op: op, Err: err}
}

// ConcurrencyError reports an optimistic locking conflict on an aggregate
type ConcurrencyError struct {
	AggregateID     string
	ExpectedVersion int
	ActualVersion   int
}

func (e ConcurrencyError) Error() string {
	return fmt.Sprintf(
		"concurrency conflict on aggregate %s: expected version %d, actual %d",
		e.AggregateID, e.ExpectedVersion, e.ActualVersion,
	)
}

// Unwrap makes the error match errors.Is(err, ErrConcurrencyConflict)
func (e ConcurrencyError) Unwrap() error {
	return ErrConcurrencyConflict
}

// NewConcurrencyError creates a ConcurrencyError
func NewConcurrencyError(aggregateID string, expected, actual int) error {
	return &ConcurrencyError{
		AggregateID:     aggregateID,
		ExpectedVersion: expected,
		ActualVersion:   actual,
	}
}

// DomainError reports a business rule violation surfaced by an aggregate
type DomainError struct {
	Rule string
	Err  error
}

func (e DomainError) Error() string {
	return fmt.Sprintf("domain rule %s: %v", e.Rule, e.Err)
}

// Unwrap exposes the underlying domain sentinel
func (e DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a DomainError
func NewDomainError(rule string, err error) error {
	return &DomainError{Rule: rule, Err: err}
}
