package course

import (
	"context"
	"fmt"

	"github.com/coursery/coursery/internal/application/appcore"
)

// GetCourseUseCase serves a single catalog read model.
type GetCourseUseCase struct {
	catalog CatalogReader
}

// NewGetCourseUseCase creates a new GetCourseUseCase
func NewGetCourseUseCase(catalog CatalogReader) *GetCourseUseCase {
	return &GetCourseUseCase{catalog: catalog}
}

// Execute returns the catalog row for the given course ID.
func (uc *GetCourseUseCase) Execute(_ context.Context, query GetCourseQuery) (ViewResult, error) {
	if err := appcore.ValidateUUID("courseID", query.CourseID); err != nil {
		return ViewResult{}, fmt.Errorf("validation failed: %w", err)
	}

	view, ok := uc.catalog.Course(query.CourseID.String())
	if !ok {
		return ViewResult{}, appcore.NewNotFoundError("course", query.CourseID.String())
	}

	return ViewResult{Course: view}, nil
}
