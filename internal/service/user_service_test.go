package service

import (
	"context"
	"testing"

	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserCreate(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 1
		}).Return(nil)

	svc := NewUserService(users, testLogger())
	got, err := svc.Create(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestUserCreateValidation(t *testing.T) {
	svc := NewUserService(new(mockUsers), testLogger())

	_, err := svc.Create(context.Background(), "  ", "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalid, "blank name")

	for _, email := range []string{"", "no-at-sign", "@example.com", "alice@", "with space@example.com"} {
		_, err := svc.Create(context.Background(), "Alice", email)
		assert.ErrorIs(t, err, domain.ErrInvalid, "email %q", email)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(domain.ErrConflict)

	svc := NewUserService(users, testLogger())
	_, err := svc.Create(ctx, "Alice", "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)
	users.On("UpdateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	svc := NewUserService(users, testLogger())
	got, err := svc.Update(ctx, 1, "", "alice@new.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name, "blank name keeps the old value")
	assert.Equal(t, "alice@new.example.com", got.Email)
}

func TestUserUpdateInvalidEmail(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)

	svc := NewUserService(users, testLogger())
	_, err := svc.Update(ctx, 1, "Alice", "broken")
	assert.ErrorIs(t, err, domain.ErrInvalid)
	users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestUserGetNotFound(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("GetUser", ctx, int64(99)).Return(nil, domain.ErrNotFound)

	svc := NewUserService(users, testLogger())
	_, err := svc.Get(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserDelete(t *testing.T) {
	ctx := context.Background()
	users := new(mockUsers)
	users.On("DeleteUser", ctx, int64(1)).Return(nil)

	svc := NewUserService(users, testLogger())
	require.NoError(t, svc.Delete(ctx, 1))
	users.AssertExpectations(t)
}
