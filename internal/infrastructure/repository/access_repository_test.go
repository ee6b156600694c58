package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

func TestMemoryAccessRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()

	t.Run("saved record is found by ID and by user-course pair", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryAccessRepository(store, bus)
		userID := uuid.NewUUID()
		courseID := uuid.NewUUID()
		agg := grantedAccess(t, userID, courseID, nil)

		require.NoError(t, repo.Save(ctx, agg))

		byID, err := repo.FindByID(ctx, agg.ID())
		require.NoError(t, err)
		assert.Equal(t, userID, byID.UserID())

		byPair, err := repo.FindByUserAndCourse(ctx, userID, courseID)
		require.NoError(t, err)
		assert.Equal(t, agg.ID(), byPair.ID())
	})

	t.Run("unknown pair is not found", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryAccessRepository(store, bus)

		_, err := repo.FindByUserAndCourse(ctx, uuid.NewUUID(), uuid.NewUUID())

		assert.ErrorIs(t, err, appcore.ErrNotFound)
	})

	t.Run("second record for the same pair is rejected", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryAccessRepository(store, bus)
		userID := uuid.NewUUID()
		courseID := uuid.NewUUID()
		require.NoError(t, repo.Save(ctx, grantedAccess(t, userID, courseID, nil)))

		err := repo.Save(ctx, grantedAccess(t, userID, courseID, nil))

		require.Error(t, err)
		assert.ErrorIs(t, err, appcore.ErrConflict)
	})

	t.Run("same user may hold access to several courses", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryAccessRepository(store, bus)
		userID := uuid.NewUUID()

		first := grantedAccess(t, userID, uuid.NewUUID(), nil)
		second := grantedAccess(t, userID, uuid.NewUUID(), nil)
		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		records, err := repo.FindByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, first.ID(), records[0].ID())
		assert.Equal(t, second.ID(), records[1].ID())
	})
}

func TestMemoryAccessRepository_FindDueForExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store, bus := newBackend()
	repo := repository.NewMemoryAccessRepository(store, bus)

	expired := grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), timePtr(now.Add(-24*time.Hour)))
	atBoundary := grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), timePtr(now))
	upcoming := grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), timePtr(now.Add(24*time.Hour)))
	lifetime := grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), nil)
	revoked := grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), timePtr(now.Add(-24*time.Hour)))
	require.NoError(t, revoked.Revoke("refund"))

	require.NoError(t, repo.Save(ctx, expired))
	require.NoError(t, repo.Save(ctx, atBoundary))
	require.NoError(t, repo.Save(ctx, upcoming))
	require.NoError(t, repo.Save(ctx, lifetime))
	require.NoError(t, repo.Save(ctx, revoked))

	due, err := repo.FindDueForExpiry(ctx, now)

	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, expired.ID(), due[0].ID())
	assert.Equal(t, atBoundary.ID(), due[1].ID())
}

func TestMemoryAccessRepository_Count(t *testing.T) {
	ctx := context.Background()

	store, bus := newBackend()
	repo := repository.NewMemoryAccessRepository(store, bus)
	require.NoError(t, repo.Save(ctx, grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), nil)))
	require.NoError(t, repo.Save(ctx, grantedAccess(t, uuid.NewUUID(), uuid.NewUUID(), nil)))

	count, err := repo.Count(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
