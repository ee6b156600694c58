package user

import "github.com/coursery/coursery/internal/domain/user"

// Result holds the user aggregate produced by a command or query.
type Result struct {
	User *user.Aggregate
}

// ListResult holds a page of users.
type ListResult struct {
	Users      []*user.Aggregate
	TotalCount int
	Offset     int
	Limit      int
}
