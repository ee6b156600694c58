package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcourse "github.com/coursery/coursery/internal/application/course"
	"github.com/coursery/coursery/internal/domain/errs"
)

func TestUpdateCourseUseCase_Success(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewUpdateCourseUseCase(f.courses)
	policyID := f.seedPolicy(t, "Standard")
	courseID := f.seedCourse(t, "Go Fundamentals", policyID)

	cmd := appcourse.UpdateCourseCommand{
		CourseID:    courseID,
		Title:       "Go Fundamentals, 2nd Edition",
		Description: "Revised and expanded.",
	}

	// Act
	result, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals, 2nd Edition", result.Course.Title().String())
	assert.Equal(t, 2, result.Course.Version())

	view, ok := f.catalog.Course(courseID.String())
	require.True(t, ok)
	assert.Equal(t, "Go Fundamentals, 2nd Edition", view.Title)
}

func TestUpdateCourseUseCase_SameTitleKept(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewUpdateCourseUseCase(f.courses)
	policyID := f.seedPolicy(t, "Standard")
	courseID := f.seedCourse(t, "Go Fundamentals", policyID)

	cmd := appcourse.UpdateCourseCommand{
		CourseID:    courseID,
		Title:       "Go Fundamentals",
		Description: "Only the description changes.",
	}

	// Act
	result, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Only the description changes.", result.Course.Description().String())
}

func TestUpdateCourseUseCase_TitleTakenByOtherCourse(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewUpdateCourseUseCase(f.courses)
	policyID := f.seedPolicy(t, "Standard")
	courseID := f.seedCourse(t, "Go Fundamentals", policyID)
	f.seedCourse(t, "Advanced Go", policyID)

	cmd := appcourse.UpdateCourseCommand{
		CourseID:    courseID,
		Title:       "Advanced Go",
		Description: "Trying to steal a title.",
	}

	// Act
	_, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, appcourse.ErrTitleTaken)
}

func TestUpdateCourseUseCase_DeprecatedCourse(t *testing.T) {
	// Arrange
	f := newFixture(t)
	useCase := appcourse.NewUpdateCourseUseCase(f.courses)
	policyID := f.seedPolicy(t, "Standard")
	courseID := f.seedCourse(t, "Go Fundamentals", policyID)

	crs, err := f.courses.FindByID(context.Background(), courseID)
	require.NoError(t, err)
	require.NoError(t, crs.Deprecate())
	require.NoError(t, f.courses.Save(context.Background(), crs))

	cmd := appcourse.UpdateCourseCommand{
		CourseID:    courseID,
		Title:       "New Title",
		Description: "New description.",
	}

	// Act
	_, err = useCase.Execute(context.Background(), cmd)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}
