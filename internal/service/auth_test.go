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

func TestAuthService_Register_Success(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	// Register clears PasswordHash on the same struct before returning, so the
	// hash is captured here and checked after the call rather than inside the
	// matcher.
	var savedHash string
	mockUserRepo.On("Save", ctx, mock.MatchedBy(func(user *domain.User) bool {
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, domain.RoleDeveloper, user.Role, "role should default to developer")
		assert.NotEmpty(t, user.UID)
		assert.True(t, user.IsActive)
		return true
	})).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(*domain.User)
			saved.ID = 5
			savedHash = saved.PasswordHash
		}).
		Return(nil).
		Once()

	user, err := authService.Register(ctx, service.RegisterInput{
		Email:     "ada@example.com",
		Password:  "StrongPass123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(5), user.ID)
	assert.Empty(t, user.PasswordHash, "password hash must not leave the service")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedHash), []byte("StrongPass123")))
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	mockUserRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).
		Return(repository.ErrDuplicateEntry).
		Once()

	_, err := authService.Register(ctx, service.RegisterInput{
		Email:    "taken@example.com",
		Password: "password",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed))
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)

	_, err := authService.Register(context.Background(), service.RegisterInput{Email: "x@example.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	mockUserRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_ReusesExistingToken(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &domain.User{ID: 1, Email: "dev@example.com", PasswordHash: string(hashed), IsActive: true}
	existing := &domain.AuthToken{ID: 9, Key: "aabbccddeeff", UserID: 1}

	mockUserRepo.On("FindByEmail", ctx, "dev@example.com").Return(user, nil).Once()
	mockTokenRepo.On("FindByUserID", ctx, uint(1)).Return(existing, nil).Once()

	key, loggedIn, err := authService.Login(ctx, "dev@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "aabbccddeeff", key)
	require.NotNil(t, loggedIn)
	assert.Empty(t, loggedIn.PasswordHash)
	mockTokenRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockUserRepo.AssertExpectations(t)
	mockTokenRepo.AssertExpectations(t)
}

func TestAuthService_Login_CreatesTokenWhenNoneExists(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &domain.User{ID: 2, Email: "pm@example.com", PasswordHash: string(hashed), IsActive: true}

	mockUserRepo.On("FindByEmail", ctx, "pm@example.com").Return(user, nil).Once()
	mockTokenRepo.On("FindByUserID", ctx, uint(2)).Return(nil, repository.ErrTokenNotFound).Once()
	mockTokenRepo.On("Save", ctx, mock.MatchedBy(func(token *domain.AuthToken) bool {
		assert.Equal(t, uint(2), token.UserID)
		assert.Len(t, token.Key, 40, "token key should be 40 hex chars")
		return true
	})).Return(nil).Once()

	key, _, err := authService.Login(ctx, "pm@example.com", "password123")

	require.NoError(t, err)
	assert.Len(t, key, 40)
	mockTokenRepo.AssertExpectations(t)
}

func TestAuthService_Login_IncorrectPassword(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	user := &domain.User{ID: 1, Email: "dev@example.com", PasswordHash: string(hashed), IsActive: true}
	mockUserRepo.On("FindByEmail", ctx, "dev@example.com").Return(user, nil).Once()

	key, _, err := authService.Login(ctx, "dev@example.com", "wrong")

	require.Error(t, err)
	assert.Empty(t, key)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
	mockTokenRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &domain.User{ID: 3, Email: "gone@example.com", PasswordHash: string(hashed), IsActive: false}
	mockUserRepo.On("FindByEmail", ctx, "gone@example.com").Return(user, nil).Once()

	_, _, err := authService.Login(ctx, "gone@example.com", "password123")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
}

func TestAuthService_ResolveToken_EmptyKeyIsAnonymous(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)

	identity, err := authService.ResolveToken(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, identity.Anonymous())
	mockTokenRepo.AssertNotCalled(t, "FindByKey", mock.Anything, mock.Anything)
}

func TestAuthService_ResolveToken_UnknownKeyIsAnonymous(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	mockTokenRepo.On("FindByKey", ctx, "deadbeef").Return(nil, repository.ErrTokenNotFound).Once()

	identity, err := authService.ResolveToken(ctx, "deadbeef")

	require.NoError(t, err, "an unknown key is anonymous, not an error")
	assert.True(t, identity.Anonymous())
	mockTokenRepo.AssertExpectations(t)
}

func TestAuthService_ResolveToken_InactiveUserIsAnonymous(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	token := &domain.AuthToken{Key: "cafe01", UserID: 7, User: domain.User{ID: 7, IsActive: false}}
	mockTokenRepo.On("FindByKey", ctx, "cafe01").Return(token, nil).Once()

	identity, err := authService.ResolveToken(ctx, "cafe01")

	require.NoError(t, err)
	assert.True(t, identity.Anonymous())
}

func TestAuthService_ResolveToken_Success(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	token := &domain.AuthToken{
		Key:    "cafe02",
		UserID: 8,
		User:   domain.User{ID: 8, Email: "dev@example.com", PasswordHash: "hash", IsActive: true},
	}
	mockTokenRepo.On("FindByKey", ctx, "cafe02").Return(token, nil).Once()

	identity, err := authService.ResolveToken(ctx, "cafe02")

	require.NoError(t, err)
	assert.False(t, identity.Anonymous())
	assert.Equal(t, uint(8), identity.UserID)
	require.NotNil(t, identity.User)
	assert.Empty(t, identity.User.PasswordHash)
}

func TestAuthService_ResolveToken_StorageFailure(t *testing.T) {
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	authService := service.NewAuthService(mockUserRepo, mockTokenRepo)
	ctx := context.Background()

	mockTokenRepo.On("FindByKey", ctx, "cafe03").Return(nil, errors.New("connection reset")).Once()

	_, err := authService.ResolveToken(ctx, "cafe03")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInternalServer))
}
