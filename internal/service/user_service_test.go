package service

import (
	"context"
	"testing"

	"shareit/internal/apperr"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *mockRepo) {
	t.Helper()
	repo := new(mockRepo)
	logger := zerolog.Nop()
	return NewUserService(repo, &logger), repo
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 1 }).
			Return(nil)

		u, err := s.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
	})

	for _, email := range []string{"", "   ", "not-an-email", "a@"} {
		t.Run("InvalidEmail "+email, func(t *testing.T) {
			s, repo := newUserService(t)
			_, err := s.CreateUser(ctx, &models.User{Name: "Alice", Email: email})
			assert.ErrorIs(t, err, apperr.ErrBadRequest)
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}

	t.Run("Duplicate", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("CreateUser", ctx, mock.Anything).Return(apperr.Conflictf("user already exists"))

		_, err := s.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@example.com"})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialName", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil)
		repo.On("UpdateUser", ctx, mock.Anything).Return(nil)

		name := "Alicia"
		u, err := s.UpdateUser(ctx, 1, models.UserPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Alicia", u.Name)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("BadEmail", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1, Email: "alice@example.com"}, nil)

		email := "broken"
		_, err := s.UpdateUser(ctx, 1, models.UserPatch{Email: &email})
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1, Email: "alice@example.com"}, nil)
		repo.On("UpdateUser", ctx, mock.Anything).Return(apperr.Conflictf("user already exists"))

		email := "bob@example.com"
		_, err := s.UpdateUser(ctx, 1, models.UserPatch{Email: &email})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("NotFound", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(nil, apperr.NotFoundf("user"))

		_, err := s.UpdateUser(ctx, 1, models.UserPatch{})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsDeleted", func(t *testing.T) {
		s, repo := newUserService(t)
		user := &models.User{ID: 1, Name: "Alice"}
		repo.On("GetUserByID", ctx, int64(1)).Return(user, nil)
		repo.On("DeleteUser", ctx, int64(1)).Return(nil)

		got, err := s.DeleteUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("Missing", func(t *testing.T) {
		s, repo := newUserService(t)
		repo.On("GetUserByID", ctx, int64(1)).Return(nil, apperr.NotFoundf("user"))

		_, err := s.DeleteUser(ctx, 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	s, repo := newUserService(t)
	repo.On("GetAllUsers", ctx).Return([]*models.User{{ID: 1}, {ID: 2}}, nil)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
