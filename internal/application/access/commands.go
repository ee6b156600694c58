package access

import (
	"time"

	"github.com/coursery/coursery/internal/domain/uuid"
)

// Command is the base interface for access commands.
type Command interface {
	CommandName() string
}

// GrantAccessCommand grants a user access to a course outside the order
// flow, e.g. a manual or promotional grant. A nil expiry means lifetime
// access.
type GrantAccessCommand struct {
	UserID    uuid.UUID
	CourseID  uuid.UUID
	ExpiresAt *time.Time
}

func (c GrantAccessCommand) CommandName() string { return "GrantAccess" }

// RevokeAccessCommand withdraws access, recording the reason.
type RevokeAccessCommand struct {
	AccessID uuid.UUID
	Reason   string
}

func (c RevokeAccessCommand) CommandName() string { return "RevokeAccess" }

// ReactivateAccessCommand restores expired access with a new expiry.
// A nil expiry means lifetime access.
type ReactivateAccessCommand struct {
	AccessID  uuid.UUID
	ExpiresAt *time.Time
}

func (c ReactivateAccessCommand) CommandName() string { return "ReactivateAccess" }

// UpdateProgressCommand advances a user's course completion percentage.
type UpdateProgressCommand struct {
	AccessID uuid.UUID
	Progress int
}

func (c UpdateProgressCommand) CommandName() string { return "UpdateProgress" }
