package course

import (
	"fmt"
	"strings"

	"github.com/coursery/coursery/internal/domain/errs"
)

const (
	// MaxTitleLength limits course titles.
	MaxTitleLength = 200
	// MaxDescriptionLength limits course descriptions.
	MaxDescriptionLength = 2000
)

// Title is a validated, trimmed course title.
type Title string

// NewTitle validates and trims a raw title.
func NewTitle(raw string) (Title, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	if len(trimmed) > MaxTitleLength {
		return "", fmt.Errorf("%w: title exceeds %d characters", errs.ErrInvalidInput, MaxTitleLength)
	}
	return Title(trimmed), nil
}

// String returns the title text.
func (t Title) String() string { return string(t) }

// IsZero reports whether the title is unset.
func (t Title) IsZero() bool { return t == "" }

// Description is a validated, trimmed course description.
type Description string

// NewDescription validates and trims a raw description.
func NewDescription(raw string) (Description, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: description is required", errs.ErrInvalidInput)
	}
	if len(trimmed) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: description exceeds %d characters", errs.ErrInvalidInput, MaxDescriptionLength)
	}
	return Description(trimmed), nil
}

// String returns the description text.
func (d Description) String() string { return string(d) }

// IsZero reports whether the description is unset.
func (d Description) IsZero() bool { return d == "" }
