package access

import "errors"

// Business rule errors
var (
	// ErrAccessExists indicates the user already holds an access record for the course
	ErrAccessExists = errors.New("access record for this user and course already exists")
	// ErrNotExpired indicates reactivation was attempted on access that is not expired
	ErrNotExpired = errors.New("only expired access can be reactivated")
)
