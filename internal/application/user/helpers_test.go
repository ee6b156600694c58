package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/eventbus"
	"github.com/coursery/coursery/internal/infrastructure/eventstore"
	"github.com/coursery/coursery/internal/infrastructure/repository"
)

// newUserRepository wires a user repository around a fresh event store and bus.
func newUserRepository() *repository.MemoryUserRepository {
	store := eventstore.NewInMemoryEventStore()
	bus := eventbus.NewInMemoryEventBus()
	return repository.NewMemoryUserRepository(store, bus)
}

// seedUser stores a registered user and returns its ID.
func seedUser(t *testing.T, users *repository.MemoryUserRepository, email string) uuid.UUID {
	t.Helper()

	address, err := user.NewEmailAddress(email)
	require.NoError(t, err)
	profile, err := user.NewProfile("Demo", "User", "")
	require.NoError(t, err)

	agg := user.NewAggregate(uuid.NewUUID())
	require.NoError(t, agg.Register(address, profile))
	require.NoError(t, users.Save(context.Background(), agg))

	return agg.ID()
}
