package course

import (
	"context"
)

// ListCatalogUseCase serves the course catalog listing.
type ListCatalogUseCase struct {
	catalog CatalogReader
}

// NewListCatalogUseCase creates a new ListCatalogUseCase
func NewListCatalogUseCase(catalog CatalogReader) *ListCatalogUseCase {
	return &ListCatalogUseCase{catalog: catalog}
}

// Execute returns the catalog, ordered by title.
func (uc *ListCatalogUseCase) Execute(_ context.Context, query ListCatalogQuery) (CatalogResult, error) {
	views := uc.catalog.Catalog()
	if query.ActiveOnly {
		views = uc.catalog.ActiveCourses()
	}

	return CatalogResult{
		Courses:    views,
		TotalCount: len(views),
	}, nil
}
