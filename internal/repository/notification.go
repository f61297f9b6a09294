package repository

import (
	"context"

	"project-hub/internal/domain"
)

// NotificationRepository defines storage and retrieval of notifications.
type NotificationRepository interface {
	// ListByUserID returns the user's notifications newest first, at most
	// limit rows; unreadOnly restricts to unread ones.
	ListByUserID(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, error)

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID uint) (int64, error)

	// FindByUID looks a notification up by uid, scoped to its owner.
	FindByUID(ctx context.Context, uid string, userID uint) (*domain.Notification, error)

	// BulkCreate inserts all rows in one statement.
	BulkCreate(ctx context.Context, notifications []domain.Notification) error

	// MarkRead flags one notification as read.
	MarkRead(ctx context.Context, id uint) error

	// MarkAllRead flags all of the user's unread notifications as read and
	// returns how many were updated.
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}
