package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

func TestMemoryUserRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()

	t.Run("saved user is found by ID and email", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryUserRepository(store, bus)
		agg := registeredUser(t, "demo@example.com")

		require.NoError(t, repo.Save(ctx, agg))

		byID, err := repo.FindByID(ctx, agg.ID())
		require.NoError(t, err)
		assert.Equal(t, "demo@example.com", byID.Email().String())

		address, err := user.NewEmailAddress("demo@example.com")
		require.NoError(t, err)
		byEmail, err := repo.FindByEmail(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, agg.ID(), byEmail.ID())
	})

	t.Run("email lookup is normalized", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryUserRepository(store, bus)
		require.NoError(t, repo.Save(ctx, registeredUser(t, "Demo@Example.COM")))

		address, err := user.NewEmailAddress("demo@example.com")
		require.NoError(t, err)

		_, err = repo.FindByEmail(ctx, address)
		assert.NoError(t, err)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryUserRepository(store, bus)

		address, err := user.NewEmailAddress("nobody@example.com")
		require.NoError(t, err)

		_, err = repo.FindByEmail(ctx, address)
		assert.ErrorIs(t, err, appcore.ErrNotFound)
	})
}

func TestMemoryUserRepository_EmailUniqueness(t *testing.T) {
	ctx := context.Background()

	t.Run("second user with the same email is rejected", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryUserRepository(store, bus)
		require.NoError(t, repo.Save(ctx, registeredUser(t, "demo@example.com")))

		err := repo.Save(ctx, registeredUser(t, "demo@example.com"))

		require.Error(t, err)
		assert.ErrorIs(t, err, appcore.ErrConflict)
	})

	t.Run("rejected save stores nothing", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryUserRepository(store, bus)
		require.NoError(t, repo.Save(ctx, registeredUser(t, "demo@example.com")))

		duplicate := registeredUser(t, "demo@example.com")
		require.Error(t, repo.Save(ctx, duplicate))

		_, err := repo.FindByID(ctx, duplicate.ID())
		assert.ErrorIs(t, err, appcore.ErrNotFound)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("email change frees the old address", func(t *testing.T) {
		store, bus := newBackend()
		repo := repository.NewMemoryUserRepository(store, bus)
		agg := registeredUser(t, "old@example.com")
		require.NoError(t, repo.Save(ctx, agg))

		newAddress, err := user.NewEmailAddress("new@example.com")
		require.NoError(t, err)
		require.NoError(t, agg.ChangeEmail(newAddress))
		require.NoError(t, repo.Save(ctx, agg))

		oldAddress, err := user.NewEmailAddress("old@example.com")
		require.NoError(t, err)
		_, err = repo.FindByEmail(ctx, oldAddress)
		assert.ErrorIs(t, err, appcore.ErrNotFound)

		found, err := repo.FindByEmail(ctx, newAddress)
		require.NoError(t, err)
		assert.Equal(t, agg.ID(), found.ID())

		// The freed address can be claimed again
		require.NoError(t, repo.Save(ctx, registeredUser(t, "old@example.com")))
	})
}

func TestMemoryUserRepository_List(t *testing.T) {
	ctx := context.Background()

	store, bus := newBackend()
	repo := repository.NewMemoryUserRepository(store, bus)
	first := registeredUser(t, "first@example.com")
	second := registeredUser(t, "second@example.com")
	third := registeredUser(t, "third@example.com")
	for _, agg := range []*user.Aggregate{first, second, third} {
		require.NoError(t, repo.Save(ctx, agg))
	}

	t.Run("lists in registration order", func(t *testing.T) {
		users, err := repo.List(ctx, 0, 10)

		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, first.ID(), users[0].ID())
		assert.Equal(t, third.ID(), users[2].ID())
	})

	t.Run("paginates", func(t *testing.T) {
		users, err := repo.List(ctx, 1, 1)

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, second.ID(), users[0].ID())
	})

	t.Run("counts", func(t *testing.T) {
		count, err := repo.Count(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
