package course

import (
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Query is the base interface for course queries.
type Query interface {
	QueryName() string
}

// GetCourseQuery fetches a single catalog row by course ID.
type GetCourseQuery struct {
	CourseID uuid.UUID
}

func (q GetCourseQuery) QueryName() string { return "GetCourse" }

// ListCatalogQuery fetches the course catalog, optionally restricted to
// courses open for purchase.
type ListCatalogQuery struct {
	ActiveOnly bool
}

func (q ListCatalogQuery) QueryName() string { return "ListCatalog" }

// CatalogReader serves course read models built from the event stream.
// The interface is declared on the consumer side; the course catalog
// projection satisfies it.
type CatalogReader interface {
	Course(courseID string) (projection.CourseView, bool)
	Catalog() []projection.CourseView
	ActiveCourses() []projection.CourseView
}
