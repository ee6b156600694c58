package user

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coursery/coursery/internal/domain/errs"
)

// MaxEmailLength is the RFC 5321 limit on address length.
const MaxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// EmailAddress is a validated, lowercase-normalized email address.
type EmailAddress string

// NewEmailAddress validates and normalizes a raw address.
func NewEmailAddress(raw string) (EmailAddress, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", fmt.Errorf("%w: email is required", errs.ErrInvalidInput)
	}
	if len(normalized) > MaxEmailLength {
		return "", fmt.Errorf("%w: email exceeds %d characters", errs.ErrInvalidInput, MaxEmailLength)
	}
	if !emailPattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: invalid email format", errs.ErrInvalidInput)
	}
	return EmailAddress(normalized), nil
}

// String returns the normalized address.
func (e EmailAddress) String() string {
	return string(e)
}

// IsZero reports whether the address is unset.
func (e EmailAddress) IsZero() bool {
	return e == ""
}
