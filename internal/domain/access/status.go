package access

import (
	"fmt"

	"github.com/coursery/coursery/internal/domain/errs"
)

// Status is the access record lifecycle status.
type Status string

// Access statuses
const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// ParseStatus converts a raw string to a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusActive, StatusExpired, StatusRevoked:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown access status %q", errs.ErrInvalidInput, raw)
	}
}

// String returns the status as a string.
func (s Status) String() string { return string(s) }
