package access

import (
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Query is the base interface for access queries.
type Query interface {
	QueryName() string
}

// ListUserAccessQuery fetches all access rows of a user.
type ListUserAccessQuery struct {
	UserID uuid.UUID
}

func (q ListUserAccessQuery) QueryName() string { return "ListUserAccess" }

// AccessReader serves access read models built from the event stream.
// The interface is declared on the consumer side; the user access
// projection satisfies it.
type AccessReader interface {
	Access(userID, courseID string) (projection.AccessView, bool)
	UserAccess(userID string) []projection.AccessView
}
