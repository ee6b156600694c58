package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/application/appcore"
	appuser "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/domain/uuid"
)

func TestChangeEmailUseCase_Success(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewChangeEmailUseCase(users)
	userID := seedUser(t, users, "old@example.com")

	cmd := appuser.ChangeEmailCommand{
		UserID:   userID,
		NewEmail: "new@example.com",
	}

	// Act
	result, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", result.User.Email().String())
	assert.Equal(t, 2, result.User.Version())

	// The new address is now indexed; the old one is not.
	stored, err := users.FindByEmail(context.Background(), result.User.Email())
	require.NoError(t, err)
	assert.Equal(t, userID, stored.ID())
}

func TestChangeEmailUseCase_SameAddressIsNoOp(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewChangeEmailUseCase(users)
	userID := seedUser(t, users, "same@example.com")

	cmd := appuser.ChangeEmailCommand{
		UserID:   userID,
		NewEmail: "same@example.com",
	}

	// Act
	result, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "same@example.com", result.User.Email().String())
	assert.Equal(t, 1, result.User.Version(), "no event should be emitted")
}

func TestChangeEmailUseCase_AddressTaken(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewChangeEmailUseCase(users)
	userID := seedUser(t, users, "first@example.com")
	seedUser(t, users, "second@example.com")

	cmd := appuser.ChangeEmailCommand{
		UserID:   userID,
		NewEmail: "second@example.com",
	}

	// Act
	_, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, appuser.ErrEmailTaken)
}

func TestChangeEmailUseCase_UnknownUser(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewChangeEmailUseCase(users)

	cmd := appuser.ChangeEmailCommand{
		UserID:   uuid.NewUUID(),
		NewEmail: "new@example.com",
	}

	// Act
	_, err := useCase.Execute(context.Background(), cmd)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, appcore.ErrNotFound)
}
