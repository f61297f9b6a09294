package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormUserRepository is the GORM implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a GormUserRepository. The connection is
// injected; failing early beats a runtime nil dereference.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by email '%s': %w", email, err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id %d: %w", id, err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by uid '%s': %w", uid, err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find users by ids: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("first_name, last_name, email").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list users: %w", err)
	}
	return users, nil
}

// Save creates or updates a user. GORM's Save inserts when the primary key is
// the zero value and updates otherwise.
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %d, email: %s): %w", user.ID, user.Email, err)
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&domain.User{}, id).Error
	if err != nil {
		return fmt.Errorf("gorm: delete user %d: %w", id, err)
	}
	return nil
}

// GormTokenRepository is the GORM implementation of TokenRepository.
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a GormTokenRepository.
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	if db == nil {
		panic("database connection cannot be nil for GormTokenRepository")
	}
	return &GormTokenRepository{db: db}
}

// FindByKey resolves a token key, preloading the bound user so callers get the
// full identity in one round trip.
func (r *GormTokenRepository) FindByKey(ctx context.Context, key string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.WithContext(ctx).Preload("User").Where("`key` = ?", key).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}
		return nil, fmt.Errorf("gorm: find token by key: %w", err)
	}
	return &token, nil
}

func (r *GormTokenRepository) FindByUserID(ctx context.Context, userID uint) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}
		return nil, fmt.Errorf("gorm: find token by user %d: %w", userID, err)
	}
	return &token, nil
}

func (r *GormTokenRepository) Save(ctx context.Context, token *domain.AuthToken) error {
	err := r.db.WithContext(ctx).Save(token).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save token for user %d: %w", token.UserID, err)
	}
	return nil
}

// DeleteByUserID removes the user's tokens. Zero rows affected is fine: logout
// of an already logged-out user is a no-op.
func (r *GormTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.AuthToken{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete tokens for user %d: %w", userID, err)
	}
	return nil
}
