package testutil

import (
	courseapp "github.com/coursery/coursery/internal/application/course"
	orderapp "github.com/coursery/coursery/internal/application/order"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// CreateCourseCommandFixture returns a valid course creation command under
// the given refund policy.
func CreateCourseCommandFixture(policyID uuid.UUID) courseapp.CreateCourseCommand {
	return courseapp.CreateCourseCommand{
		Title:       "Test Course",
		Description: "A course used in tests",
		Amount:      "49.90",
		Currency:    "USD",
		AccessType:  "unlimited",
		PolicyID:    policyID,
	}
}

// WithTitle modifies the course title.
func WithTitle(title string) func(*courseapp.CreateCourseCommand) {
	return func(cmd *courseapp.CreateCourseCommand) {
		cmd.Title = title
	}
}

// WithPrice modifies the course price.
func WithPrice(amount, currency string) func(*courseapp.CreateCourseCommand) {
	return func(cmd *courseapp.CreateCourseCommand) {
		cmd.Amount = amount
		cmd.Currency = currency
	}
}

// WithLimitedAccess makes the course time-limited.
func WithLimitedAccess() func(*courseapp.CreateCourseCommand) {
	return func(cmd *courseapp.CreateCourseCommand) {
		cmd.AccessType = "limited"
	}
}

// BuildCreateCourseCommand creates a course command with modifiers applied.
func BuildCreateCourseCommand(
	policyID uuid.UUID,
	modifiers ...func(*courseapp.CreateCourseCommand),
) courseapp.CreateCourseCommand {
	cmd := CreateCourseCommandFixture(policyID)
	for _, modifier := range modifiers {
		modifier(&cmd)
	}
	return cmd
}

// PlaceOrderCommandFixture returns a valid single-course order command.
func PlaceOrderCommandFixture(userID, courseID uuid.UUID) orderapp.PlaceOrderCommand {
	return orderapp.PlaceOrderCommand{
		UserID:    userID,
		CourseIDs: []uuid.UUID{courseID},
		Amount:    "49.90",
		Currency:  "USD",
	}
}

// WithCourses replaces the ordered courses.
func WithCourses(courseIDs ...uuid.UUID) func(*orderapp.PlaceOrderCommand) {
	return func(cmd *orderapp.PlaceOrderCommand) {
		cmd.CourseIDs = courseIDs
	}
}

// WithTotal modifies the order total.
func WithTotal(amount, currency string) func(*orderapp.PlaceOrderCommand) {
	return func(cmd *orderapp.PlaceOrderCommand) {
		cmd.Amount = amount
		cmd.Currency = currency
	}
}

// BuildPlaceOrderCommand creates an order command with modifiers applied.
func BuildPlaceOrderCommand(
	userID, courseID uuid.UUID,
	modifiers ...func(*orderapp.PlaceOrderCommand),
) orderapp.PlaceOrderCommand {
	cmd := PlaceOrderCommandFixture(userID, courseID)
	for _, modifier := range modifiers {
		modifier(&cmd)
	}
	return cmd
}
