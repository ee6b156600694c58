package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

func TestMemoryCourseRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()

	t.Run("saved course is found by ID and title", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryCourseRepository(store, bus)
		agg := createdCourse(t, "Go Basics", uuid.NewUUID())

		require.NoError(t, repo.Save(ctx, agg))

		byID, err := repo.FindByID(ctx, agg.ID())
		require.NoError(t, err)
		assert.Equal(t, "Go Basics", byID.Title().String())

		title, err := course.NewTitle("Go Basics")
		require.NoError(t, err)
		byTitle, err := repo.FindByTitle(ctx, title)
		require.NoError(t, err)
		assert.Equal(t, agg.ID(), byTitle.ID())
	})

	t.Run("unknown title is not found", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryCourseRepository(store, bus)

		title, err := course.NewTitle("Missing Course")
		require.NoError(t, err)

		_, err = repo.FindByTitle(ctx, title)
		assert.ErrorIs(t, err, appcore.ErrNotFound)
	})

	t.Run("second course with the same title is rejected", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryCourseRepository(store, bus)
		require.NoError(t, repo.Save(ctx, createdCourse(t, "Go Basics", uuid.NewUUID())))

		err := repo.Save(ctx, createdCourse(t, "Go Basics", uuid.NewUUID()))

		require.Error(t, err)
		assert.ErrorIs(t, err, appcore.ErrConflict)
	})

	t.Run("title update frees the old title", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryCourseRepository(store, bus)
		agg := createdCourse(t, "Go Basics", uuid.NewUUID())
		require.NoError(t, repo.Save(ctx, agg))

		newTitle, err := course.NewTitle("Go Fundamentals")
		require.NoError(t, err)
		require.NoError(t, agg.Update(newTitle, agg.Description()))
		require.NoError(t, repo.Save(ctx, agg))

		oldTitle, err := course.NewTitle("Go Basics")
		require.NoError(t, err)
		_, err = repo.FindByTitle(ctx, oldTitle)
		assert.ErrorIs(t, err, appcore.ErrNotFound)

		found, err := repo.FindByTitle(ctx, newTitle)
		require.NoError(t, err)
		assert.Equal(t, agg.ID(), found.ID())
	})
}

func TestMemoryCourseRepository_FindByPolicy(t *testing.T) {
	ctx := context.Background()

	store, bus := newBackend()
	repo := repository.NewMemoryCourseRepository(store, bus)
	policyA := uuid.NewUUID()
	policyB := uuid.NewUUID()

	first := createdCourse(t, "Go Basics", policyA)
	second := createdCourse(t, "Advanced Go", policyA)
	third := createdCourse(t, "Rust Basics", policyB)
	for _, agg := range []*course.Aggregate{first, second, third} {
		require.NoError(t, repo.Save(ctx, agg))
	}

	t.Run("returns courses under the policy", func(t *testing.T) {
		courses, err := repo.FindByPolicy(ctx, policyA)

		require.NoError(t, err)
		require.Len(t, courses, 2)
		assert.Equal(t, first.ID(), courses[0].ID())
		assert.Equal(t, second.ID(), courses[1].ID())
	})

	t.Run("policy change moves the course between indexes", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, first.ID())
		require.NoError(t, err)
		require.NoError(t, loaded.ChangePolicy(policyB))
		require.NoError(t, repo.Save(ctx, loaded))

		underA, err := repo.FindByPolicy(ctx, policyA)
		require.NoError(t, err)
		require.Len(t, underA, 1)
		assert.Equal(t, second.ID(), underA[0].ID())

		underB, err := repo.FindByPolicy(ctx, policyB)
		require.NoError(t, err)
		assert.Len(t, underB, 2)
	})

	t.Run("unassigned policy has no courses", func(t *testing.T) {
		courses, err := repo.FindByPolicy(ctx, uuid.NewUUID())

		require.NoError(t, err)
		assert.Empty(t, courses)
	})
}

func TestMemoryCourseRepository_List(t *testing.T) {
	ctx := context.Background()

	store, bus := newBackend()
	repo := repository.NewMemoryCourseRepository(store, bus)
	first := createdCourse(t, "Go Basics", uuid.NewUUID())
	second := createdCourse(t, "Advanced Go", uuid.NewUUID())
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	courses, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, first.ID(), courses[0].ID())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
