package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormNotificationRepository is the GORM implementation of NotificationRepository.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormNotificationRepository")
	}
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) ListByUserID(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var notifications []domain.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("gorm: list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count unread notifications for user %d: %w", userID, err)
	}
	return count, nil
}

// FindByUID is owner-scoped: a uid belonging to another user reads as not found.
func (r *GormNotificationRepository) FindByUID(ctx context.Context, uid string, userID uint) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.WithContext(ctx).
		Where("uid = ? AND user_id = ?", uid, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("gorm: find notification by uid '%s': %w", uid, err)
	}
	return &notification, nil
}

func (r *GormNotificationRepository) BulkCreate(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&notifications).Error
	if err != nil {
		return fmt.Errorf("gorm: bulk create notifications (size %d): %w", len(notifications), err)
	}
	return nil
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("gorm: mark notification %d read: %w", id, err)
	}
	return nil
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: mark all notifications read for user %d: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}
