package policy

import (
	"fmt"

	"github.com/coursery/coursery/internal/domain/errs"
)

// Type classifies a refund policy.
type Type string

// Policy types
const (
	TypeStandard Type = "standard"
	TypeExtended Type = "extended"
	TypeStrict   Type = "strict"
	// TypeNoRefund refuses refunds regardless of the window.
	TypeNoRefund Type = "no_refund"
)

// ParseType converts a raw string to a Type.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeStandard, TypeExtended, TypeStrict, TypeNoRefund:
		return Type(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown policy type %q", errs.ErrInvalidInput, raw)
	}
}

// String returns the type as a string.
func (t Type) String() string { return string(t) }

// Status is the policy lifecycle status.
type Status string

// Policy statuses
const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// String returns the status as a string.
func (s Status) String() string { return string(s) }
