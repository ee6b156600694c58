package user

import (
	"fmt"
	"strings"

	"github.com/coursery/coursery/internal/domain/errs"
)

const (
	// MaxNameLength limits first and last name length.
	MaxNameLength = 255
	// MaxBioLength limits the free-form bio text.
	MaxBioLength = 1000
)

// Profile holds a user's display information.
type Profile struct {
	firstName string
	lastName  string
	bio       string
}

// NewProfile validates and builds a profile. First and last name are
// required; bio is optional.
func NewProfile(firstName, lastName, bio string) (Profile, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" {
		return Profile{}, fmt.Errorf("%w: first name is required", errs.ErrInvalidInput)
	}
	if lastName == "" {
		return Profile{}, fmt.Errorf("%w: last name is required", errs.ErrInvalidInput)
	}
	if len(firstName) > MaxNameLength {
		return Profile{}, fmt.Errorf("%w: first name exceeds %d characters", errs.ErrInvalidInput, MaxNameLength)
	}
	if len(lastName) > MaxNameLength {
		return Profile{}, fmt.Errorf("%w: last name exceeds %d characters", errs.ErrInvalidInput, MaxNameLength)
	}
	if len(bio) > MaxBioLength {
		return Profile{}, fmt.Errorf("%w: bio exceeds %d characters", errs.ErrInvalidInput, MaxBioLength)
	}

	return Profile{firstName: firstName, lastName: lastName, bio: bio}, nil
}

// FirstName returns the first name.
func (p Profile) FirstName() string {
	return p.firstName
}

// LastName returns the last name.
func (p Profile) LastName() string {
	return p.lastName
}

// Bio returns the optional bio text.
func (p Profile) Bio() string {
	return p.bio
}

// FullName returns "First Last".
func (p Profile) FullName() string {
	return p.firstName + " " + p.lastName
}

// IsZero reports whether the profile is unset.
func (p Profile) IsZero() bool {
	return p.firstName == "" && p.lastName == ""
}
