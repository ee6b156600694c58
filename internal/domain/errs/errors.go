// Package errs defines sentinel errors shared by all domain packages.
package errs

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConcurrentModification is returned when a version conflict occurs
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInvalidState is returned when aggregate state does not allow the operation
	ErrInvalidState = errors.New("invalid aggregate state")

	// ErrInvalidTransition is returned when a status transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrCurrencyMismatch is returned when money values in different currencies are combined
	ErrCurrencyMismatch = errors.New("currency mismatch")
)
