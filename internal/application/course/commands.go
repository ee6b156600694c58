package course

import "github.com/coursery/coursery/internal/domain/uuid"

// Command is the base interface for course commands.
type Command interface {
	CommandName() string
}

// CreateCourseCommand publishes a new course to the catalog.
// Amount and Currency describe the course price.
type CreateCourseCommand struct {
	Title       string
	Description string
	Amount      string
	Currency    string
	AccessType  string
	PolicyID    uuid.UUID
}

func (c CreateCourseCommand) CommandName() string { return "CreateCourse" }

// UpdateCourseCommand changes a course's title and description.
type UpdateCourseCommand struct {
	CourseID    uuid.UUID
	Title       string
	Description string
}

func (c UpdateCourseCommand) CommandName() string { return "UpdateCourse" }

// ChangePolicyCommand assigns a different refund policy to a course.
type ChangePolicyCommand struct {
	CourseID    uuid.UUID
	NewPolicyID uuid.UUID
}

func (c ChangePolicyCommand) CommandName() string { return "ChangePolicy" }

// DeprecateCourseCommand withdraws a course from sale.
type DeprecateCourseCommand struct {
	CourseID uuid.UUID
}

func (c DeprecateCourseCommand) CommandName() string { return "DeprecateCourse" }
