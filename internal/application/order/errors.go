package order

import "errors"

// Business rule errors
var (
	// ErrNoCourses indicates an order was placed without any courses
	ErrNoCourses = errors.New("order must contain at least one course")
	// ErrCourseNotAvailable indicates a course cannot be purchased
	ErrCourseNotAvailable = errors.New("course is not available for purchase")
	// ErrDuplicatePendingOrder indicates the user already has a pending order for the course
	ErrDuplicatePendingOrder = errors.New("a pending order for this course already exists")
)
