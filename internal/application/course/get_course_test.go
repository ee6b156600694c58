package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/application/appcore"
	appcourse "github.com/coursery/coursery/internal/application/course"
	"github.com/coursery/coursery/internal/domain/uuid"
)

func TestGetCourseUseCase_Success(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewGetCourseUseCase(f.catalog)
	policyID := f.seedPolicy(t, "Standard")
	courseID := f.seedCourse(t, "Go Fundamentals", policyID)

	// Act
	result, err := useCase.Execute(context.Background(), appcourse.GetCourseQuery{CourseID: courseID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, courseID.String(), result.Course.CourseID)
	assert.Equal(t, "Go Fundamentals", result.Course.Title)
	assert.Equal(t, "Standard", result.Course.PolicyName)
}

func TestGetCourseUseCase_NotFound(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewGetCourseUseCase(f.catalog)

	// Act
	_, err := useCase.Execute(context.Background(), appcourse.GetCourseQuery{CourseID: uuid.NewUUID()})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, appcore.ErrNotFound)
}

func TestListCatalogUseCase_All(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewListCatalogUseCase(f.catalog)
	policyID := f.seedPolicy(t, "Standard")
	f.seedCourse(t, "Advanced Go", policyID)
	deprecated := f.seedCourse(t, "Legacy Go", policyID)

	crs, err := f.courses.FindByID(context.Background(), deprecated)
	require.NoError(t, err)
	require.NoError(t, crs.Deprecate())
	require.NoError(t, f.courses.Save(context.Background(), crs))

	// Act
	result, err := useCase.Execute(context.Background(), appcourse.ListCatalogQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, "Advanced Go", result.Courses[0].Title)
	assert.Equal(t, "Legacy Go", result.Courses[1].Title)
}

func TestListCatalogUseCase_ActiveOnly(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewListCatalogUseCase(f.catalog)
	policyID := f.seedPolicy(t, "Standard")
	f.seedCourse(t, "Advanced Go", policyID)
	deprecated := f.seedCourse(t, "Legacy Go", policyID)

	crs, err := f.courses.FindByID(context.Background(), deprecated)
	require.NoError(t, err)
	require.NoError(t, crs.Deprecate())
	require.NoError(t, f.courses.Save(context.Background(), crs))

	// Act
	result, err := useCase.Execute(context.Background(), appcourse.ListCatalogQuery{ActiveOnly: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "Advanced Go", result.Courses[0].Title)
}
