package policy

import "errors"

// Business rule errors
var (
	// ErrNameTaken indicates another policy already uses the name
	ErrNameTaken = errors.New("a refund policy with this name already exists")
)
