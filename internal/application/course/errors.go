package course

import "errors"

// Business rule errors
var (
	// ErrTitleTaken indicates another course already uses the title
	ErrTitleTaken = errors.New("a course with this title already exists")
	// ErrPolicyNotAssignable indicates the refund policy is not active
	ErrPolicyNotAssignable = errors.New("refund policy cannot be assigned to courses")
)
