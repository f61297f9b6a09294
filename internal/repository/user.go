package repository

import (
	"context"

	"project-hub/internal/domain"
)

// UserRepository defines storage and retrieval of user accounts.
type UserRepository interface {
	// FindByEmail looks a user up by email (the login name).
	// Returns ErrUserNotFound when no such user exists.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByID looks a user up by numeric ID.
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// FindByUID looks a user up by external uid.
	FindByUID(ctx context.Context, uid string) (*domain.User, error)

	// FindByIDs returns the users matching the given IDs, in no particular order.
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)

	// List returns all users ordered by name.
	List(ctx context.Context) ([]domain.User, error)

	// Save creates or updates a user. Returns ErrDuplicateEntry on a unique
	// constraint violation (email already registered).
	Save(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id uint) error
}

// TokenRepository defines storage of opaque login credentials.
type TokenRepository interface {
	// FindByKey resolves a token key to its record, preloading the bound user.
	// Returns ErrTokenNotFound for unknown keys.
	FindByKey(ctx context.Context, key string) (*domain.AuthToken, error)

	// FindByUserID returns the user's current token, if any.
	FindByUserID(ctx context.Context, userID uint) (*domain.AuthToken, error)

	// Save persists a token.
	Save(ctx context.Context, token *domain.AuthToken) error

	// DeleteByUserID removes all tokens for a user (logout). Deleting for a
	// user without tokens is not an error.
	DeleteByUserID(ctx context.Context, userID uint) error
}
