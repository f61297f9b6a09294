package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// Identity is the result of resolving a credential. An unknown or missing
// token yields the anonymous identity rather than an error; callers decide
// whether anonymous access is acceptable for their surface.
type Identity struct {
	UserID uint
	User   *domain.User
}

// Anonymous reports whether the identity belongs to no authenticated user.
func (i Identity) Anonymous() bool { return i.UserID == 0 }

// AuthService handles registration, login and credential resolution.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

// NewAuthService creates an AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) *AuthService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if tokenRepo == nil {
		panic("TokenRepository cannot be nil for AuthService")
	}
	return &AuthService{userRepo: userRepo, tokenRepo: tokenRepo}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	logCtx := logrus.WithField("email", in.Email)

	if in.Email == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	role := in.Role
	if role == "" {
		role = domain.RoleDeveloper
	}

	user := &domain.User{
		UID:          domain.NewUserUID(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hashedPassword,
		Role:         role,
		Avatar:       "", // client renders initials when empty
		IsActive:     true,
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Registration failed: email already exists")
			return nil, ErrRegistrationFailed
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and returns the user's opaque token, creating
// one when none exists yet. The same token is reused across logins until logout.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	logCtx := logrus.WithField("email", email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: user not found")
		} else {
			logCtx.WithError(err).Warn("Login attempt failed: error finding user")
		}
		return "", nil, ErrAuthenticationFailed
	}
	if user == nil || !user.IsActive {
		logCtx.Warn("Login attempt failed: inactive account")
		return "", nil, ErrAuthenticationFailed
	}

	if !checkPassword(password, user.PasswordHash) {
		logCtx.Warn("Login attempt failed: invalid password")
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.tokenRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			logCtx.WithError(err).Error("Failed to look up existing token")
			return "", nil, ErrInternalServer
		}
		token = &domain.AuthToken{Key: generateTokenKey(), UserID: user.ID}
		if err := s.tokenRepo.Save(ctx, token); err != nil {
			logCtx.WithError(err).Error("Failed to persist login token")
			return "", nil, ErrInternalServer
		}
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	user.PasswordHash = ""
	return token.Key, user, nil
}

// Logout revokes all of the user's tokens. WebSocket sessions resolved from a
// revoked token become anonymous on their next connect.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("Failed to delete tokens on logout")
		return ErrInternalServer
	}
	logrus.WithField("user_id", userID).Info("User logged out")
	return nil
}

// ResolveToken maps a raw token key to an identity. Unknown, revoked or empty
// keys resolve to the anonymous identity; only storage failures are errors.
func (s *AuthService) ResolveToken(ctx context.Context, key string) (Identity, error) {
	if key == "" {
		return Identity{}, nil
	}
	token, err := s.tokenRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return Identity{}, nil
		}
		logrus.WithError(err).Error("Failed to resolve token")
		return Identity{}, ErrInternalServer
	}
	if !token.User.IsActive {
		return Identity{}, nil
	}
	user := token.User
	user.PasswordHash = ""
	return Identity{UserID: token.UserID, User: &user}, nil
}

// RequestPasswordReset records a reset request. Delivery of the reset mail is
// out of scope; the call never reveals whether the account exists.
// TODO: hook up a mailer and a reset-token table
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			logrus.WithError(err).Warn("Password reset lookup failed")
		}
		return
	}
	logrus.WithField("email", email).Info("Password reset requested")
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// generateTokenKey produces a 40-hex-char opaque credential.
func generateTokenKey() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to read random bytes for token: %v", err))
	}
	return hex.EncodeToString(b)
}
