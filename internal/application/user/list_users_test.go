package user_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appuser "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/domain/errs"
)

func TestListUsersUseCase_Success(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewListUsersUseCase(users)

	for i := range 5 {
		seedUser(t, users, fmt.Sprintf("learner%d@example.com", i))
	}

	// Act
	result, err := useCase.Execute(context.Background(), appuser.ListUsersQuery{Offset: 0, Limit: 3})

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Users, 3)
	assert.Equal(t, 5, result.TotalCount)
	assert.Equal(t, 0, result.Offset)
	assert.Equal(t, 3, result.Limit)
}

func TestListUsersUseCase_SecondPage(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewListUsersUseCase(users)

	for i := range 5 {
		seedUser(t, users, fmt.Sprintf("learner%d@example.com", i))
	}

	// Act
	result, err := useCase.Execute(context.Background(), appuser.ListUsersQuery{Offset: 3, Limit: 3})

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Users, 2)
	assert.Equal(t, 5, result.TotalCount)
}

func TestListUsersUseCase_Empty(t *testing.T) {
	// Arrange
	users := newUserRepository()
	useCase := appuser.NewListUsersUseCase(users)

	// Act
	result, err := useCase.Execute(context.Background(), appuser.ListUsersQuery{Offset: 0, Limit: 10})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, result.Users)
	assert.Equal(t, 0, result.TotalCount)
}

func TestListUsersUseCase_Validation(t *testing.T) {
	users := newUserRepository()
	useCase := appuser.NewListUsersUseCase(users)

	tests := []struct {
		name  string
		query appuser.ListUsersQuery
	}{
		{"negative offset", appuser.ListUsersQuery{Offset: -1, Limit: 10}},
		{"zero limit", appuser.ListUsersQuery{Offset: 0, Limit: 0}},
		{"limit above maximum", appuser.ListUsersQuery{Offset: 0, Limit: appuser.MaxListLimit + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := useCase.Execute(context.Background(), tt.query)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}
