package course

import (
	"fmt"

	"github.com/coursery/coursery/internal/domain/errs"
)

// Status is the course lifecycle status.
type Status string

// Course statuses
const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
)

// ParseStatus converts a raw string to a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusActive, StatusDeprecated:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown course status %q", errs.ErrInvalidInput, raw)
	}
}

// String returns the status as a string.
func (s Status) String() string { return string(s) }

// AccessType describes how long purchased access lasts.
type AccessType string

// Access types
const (
	// AccessUnlimited grants lifetime access.
	AccessUnlimited AccessType = "unlimited"
	// AccessLimited grants access that expires after the platform's
	// configured access window.
	AccessLimited AccessType = "limited"
)

// ParseAccessType converts a raw string to an AccessType.
func ParseAccessType(raw string) (AccessType, error) {
	switch AccessType(raw) {
	case AccessUnlimited, AccessLimited:
		return AccessType(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown access type %q", errs.ErrInvalidInput, raw)
	}
}

// String returns the access type as a string.
func (t AccessType) String() string { return string(t) }
