// Package uuid provides the identifier type used across the domain.
package uuid

import (
	"github.com/google/uuid"
)

// UUID is a string-backed identifier for aggregates, events and read models.
type UUID string

// NewUUID generates a new random UUID.
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID validates s and returns it as a UUID.
func ParseUUID(s string) (UUID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return UUID(s), nil
}

// MustParseUUID parses s or panics. Intended for tests and fixtures.
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical string form.
func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the UUID is empty.
func (u UUID) IsZero() bool {
	return u == ""
}

// FromGoogleUUID converts a google/uuid value into a domain UUID.
func FromGoogleUUID(id uuid.UUID) UUID {
	return UUID(id.String())
}

// ToGoogleUUID converts the domain UUID back into a google/uuid value.
func (u UUID) ToGoogleUUID() (uuid.UUID, error) {
	return uuid.Parse(string(u))
}
