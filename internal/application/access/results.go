package access

import (
	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Result holds the access record produced by a command.
type Result struct {
	Record *access.Aggregate
}

// ListResult holds a user's access rows, ordered by course ID.
type ListResult struct {
	Records    []projection.AccessView
	TotalCount int
}
