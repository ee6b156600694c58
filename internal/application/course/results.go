package course

import (
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Result holds the course aggregate produced by a command.
type Result struct {
	Course *course.Aggregate
}

// ViewResult holds a single catalog read model.
type ViewResult struct {
	Course projection.CourseView
}

// CatalogResult holds the catalog listing, ordered by title.
type CatalogResult struct {
	Courses    []projection.CourseView
	TotalCount int
}
