package user

import "github.com/coursery/coursery/internal/domain/uuid"

// Query is the base interface for user queries.
type Query interface {
	QueryName() string
}

// GetUserQuery fetches a single user by ID.
type GetUserQuery struct {
	UserID uuid.UUID
}

func (q GetUserQuery) QueryName() string { return "GetUser" }

// GetUserByEmailQuery fetches a single user by email address.
type GetUserByEmailQuery struct {
	Email string
}

func (q GetUserByEmailQuery) QueryName() string { return "GetUserByEmail" }

// ListUsersQuery fetches a page of users.
type ListUsersQuery struct {
	Offset int
	Limit  int
}

func (q ListUsersQuery) QueryName() string { return "ListUsers" }
