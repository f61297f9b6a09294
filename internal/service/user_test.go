package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
	"project-hub/internal/repository/mocks"
	"project-hub/internal/service"
)

func TestUserService_Create_StarterPasswordFallback(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	userService := service.NewUserService(mockUserRepo)
	ctx := context.Background()
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}

	var savedHash string
	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		assert.Equal(t, "new.hire@example.com", user.Email, "email should be stored lowercased")
		assert.Equal(t, domain.RoleDeveloper, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEmpty(t, user.UID)
		return true
	})).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(*domain.User)
			saved.ID = 7
			savedHash = saved.PasswordHash
		}).
		Return(nil).
		Once()

	user, err := userService.Create(ctx, admin, service.CreateUserInput{
		Email:     "New.Hire@example.com",
		FirstName: "New",
		LastName:  "Hire",
		Role:      domain.RoleDeveloper,
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(7), user.ID)
	assert.Empty(t, user.PasswordHash, "password hash must not leave the service")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedHash), []byte("changeme123")),
		"blank password should fall back to the starter password")
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_Create_NonAdminDenied(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	userService := service.NewUserService(mockUserRepo)

	for _, role := range []string{domain.RoleProjectManager, domain.RoleDeveloper, domain.RoleViewer} {
		_, err := userService.Create(context.Background(), &domain.User{ID: 2, Role: role}, service.CreateUserInput{
			Email: "someone@example.com",
			Role:  domain.RoleDeveloper,
		})
		require.Error(t, err, "role %s must not provision accounts", role)
		assert.True(t, errors.Is(err, service.ErrPermissionDenied))
	}
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	userService := service.NewUserService(mockUserRepo)
	ctx := context.Background()
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}

	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).
		Return(repository.ErrDuplicateEntry).
		Once()

	_, err := userService.Create(ctx, admin, service.CreateUserInput{
		Email: "taken@example.com",
		Role:  domain.RoleDeveloper,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed))
	mockUserRepo.AssertExpectations(t)
}
