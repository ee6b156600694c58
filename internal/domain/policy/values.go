package policy

import (
	"fmt"
	"strings"

	"github.com/coursery/coursery/internal/domain/errs"
)

const (
	// MaxNameLength limits policy names.
	MaxNameLength = 100
	// MaxConditionsLength limits the free-form conditions text.
	MaxConditionsLength = 1000
)

// Name is a validated, trimmed policy name.
type Name string

// NewName validates and trims a raw policy name.
func NewName(raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: policy name is required", errs.ErrInvalidInput)
	}
	if len(trimmed) > MaxNameLength {
		return "", fmt.Errorf("%w: policy name exceeds %d characters", errs.ErrInvalidInput, MaxNameLength)
	}
	return Name(trimmed), nil
}

// String returns the name text.
func (n Name) String() string { return string(n) }

// IsZero reports whether the name is unset.
func (n Name) IsZero() bool { return n == "" }

// Conditions is the validated, trimmed terms text shown to buyers.
type Conditions string

// NewConditions validates and trims raw conditions text.
func NewConditions(raw string) (Conditions, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: policy conditions are required", errs.ErrInvalidInput)
	}
	if len(trimmed) > MaxConditionsLength {
		return "", fmt.Errorf("%w: policy conditions exceed %d characters", errs.ErrInvalidInput, MaxConditionsLength)
	}
	return Conditions(trimmed), nil
}

// String returns the conditions text.
func (c Conditions) String() string { return string(c) }

// IsZero reports whether the conditions are unset.
func (c Conditions) IsZero() bool { return c == "" }
