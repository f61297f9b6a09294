package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// starterPassword is assigned to admin-created accounts that come without a
// password; the user is expected to change it after first login.
const starterPassword = "changeme123"

// UserService handles account listing and administration.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for UserService")
	}
	return &UserService{userRepo: userRepo}
}

// List returns all accounts with password hashes stripped.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, ErrInternalServer
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Get looks a user up by uid.
func (s *UserService) Get(ctx context.Context, uid string) (*domain.User, error) {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to find user")
		return nil, ErrInternalServer
	}
	user.PasswordHash = ""
	return user, nil
}

// CreateUserInput carries an account provisioned by an administrator.
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
	Avatar    string
	IsActive  *bool
}

// Create provisions an account on behalf of an administrator. A missing
// password falls back to the starter password.
func (s *UserService) Create(ctx context.Context, actor *domain.User, in CreateUserInput) (*domain.User, error) {
	if !canManageProjects(actor) {
		return nil, ErrPermissionDenied
	}
	if in.Email == "" || in.Role == "" {
		return nil, ErrInvalidInput
	}

	password := in.Password
	if password == "" {
		password = starterPassword
	}
	hashedPassword, err := hashPassword(password)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password for provisioned account")
		return nil, ErrInternalServer
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	user := &domain.User{
		UID:          domain.NewUserUID(),
		Email:        strings.ToLower(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hashedPassword,
		Role:         in.Role,
		Avatar:       in.Avatar,
		IsActive:     isActive,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrRegistrationFailed
		}
		logrus.WithError(err).Error("Failed to create provisioned account")
		return nil, ErrInternalServer
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"actor_id": actor.ID,
	}).Info("User account provisioned")
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserInput carries the mutable account fields. Nil pointers leave the
// field unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
	Role      *string
	IsActive  *bool
}

// Update applies an account change. Role and activation changes require the
// admin role on the acting user.
func (s *UserService) Update(ctx context.Context, actor *domain.User, uid string, in UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to find user for update")
		return nil, ErrInternalServer
	}

	selfEdit := actor.ID == user.ID
	if !selfEdit && actor.Role != domain.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	if (in.Role != nil || in.IsActive != nil) && actor.Role != domain.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to save user update")
		return nil, ErrInternalServer
	}
	user.PasswordHash = ""
	return user, nil
}

// Delete removes an account. Admin only; self-deletion is refused.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, uid string) error {
	if actor.Role != domain.RoleAdmin {
		return ErrPermissionDenied
	}
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to find user for delete")
		return ErrInternalServer
	}
	if user.ID == actor.ID {
		return ErrPermissionDenied
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to delete user")
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "actor_id": actor.ID}).Info("User deleted")
	return nil
}
