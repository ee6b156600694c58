package user

import "github.com/coursery/coursery/internal/domain/uuid"

// Command is the base interface for user commands.
type Command interface {
	CommandName() string
}

// RegisterUserCommand registers a new user account.
type RegisterUserCommand struct {
	Email     string
	FirstName string
	LastName  string
	Bio       string
}

func (c RegisterUserCommand) CommandName() string { return "RegisterUser" }

// UpdateProfileCommand replaces the user's display profile.
type UpdateProfileCommand struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Bio       string
}

func (c UpdateProfileCommand) CommandName() string { return "UpdateProfile" }

// ChangeEmailCommand switches the user to a new email address.
type ChangeEmailCommand struct {
	UserID   uuid.UUID
	NewEmail string
}

func (c ChangeEmailCommand) CommandName() string { return "ChangeEmail" }
