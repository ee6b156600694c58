package appcore

import (
	"fmt"
	"slices"
	"time"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// ValidateRequired checks that a string is not empty
func ValidateRequired(field, value string) error {
	if value == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateUUID checks that a UUID is set
func ValidateUUID(field string, id uuid.UUID) error {
	if id.IsZero() {
		return NewValidationError(field, "must be a valid UUID")
	}
	return nil
}

// ValidateMaxLength checks the maximum string length
func ValidateMaxLength(field, value string, maxLength int) error {
	if len(value) > maxLength {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", maxLength))
	}
	return nil
}

// ValidateMinLength checks the minimum string length
func ValidateMinLength(field, value string, minLength int) error {
	if len(value) < minLength {
		return NewValidationError(field, fmt.Sprintf("must be at least %d characters", minLength))
	}
	return nil
}

// ValidateEnum checks that a value is one of the allowed set
func ValidateEnum(field, value string, allowedValues []string) error {
	if slices.Contains(allowedValues, value) {
		return nil
	}
	return NewValidationError(field, fmt.Sprintf("must be one of: %v", allowedValues))
}

// ValidateDateNotPast checks that a date is not in the past
func ValidateDateNotPast(field string, date *time.Time) error {
	if date != nil && date.Before(time.Now()) {
		return NewValidationError(field, "cannot be in the past")
	}
	return nil
}

// ValidatePositive checks that a number is positive
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return NewValidationError(field, "must be positive")
	}
	return nil
}

// ValidateNonNegative checks that a number is not negative
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return NewValidationError(field, "must be non-negative")
	}
	return nil
}

// ValidateRange checks that a value falls inside an inclusive range
func ValidateRange(field string, value, minValue, maxValue int) error {
	if value < minValue || value > maxValue {
		return NewValidationError(field, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	}
	return nil
}
