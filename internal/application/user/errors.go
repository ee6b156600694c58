package user

import "errors"

// Business rule errors
var (
	// ErrEmailTaken indicates another account already uses the email address
	ErrEmailTaken = errors.New("email address is already in use")
)
