package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormChatRepository is the GORM implementation of ChatRepository.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a GormChatRepository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	if db == nil {
		panic("database connection cannot be nil for GormChatRepository")
	}
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) FindRoomByUID(ctx context.Context, uid string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by uid '%s': %w", uid, err)
	}
	return &room, nil
}

func (r *GormChatRepository) FindRoomByDMKey(ctx context.Context, dmKey string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).Where("dm_key = ?", dmKey).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by dm key '%s': %w", dmKey, err)
	}
	return &room, nil
}

// ListRoomsByUserID joins through the participants table, newest activity first.
func (r *GormChatRepository) ListRoomsByUserID(ctx context.Context, userID uint) ([]domain.ChatRoom, error) {
	var rooms []domain.ChatRoom
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants ON chat_participants.room_id = chat_rooms.id").
		Where("chat_participants.user_id = ?", userID).
		Order("chat_rooms.updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list rooms for user %d: %w", userID, err)
	}
	return rooms, nil
}

func (r *GormChatRepository) SaveRoom(ctx context.Context, room *domain.ChatRoom) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save room (id: %d, uid: %s): %w", room.ID, room.UID, err)
	}
	return nil
}

// TouchRoom bumps updated_at so the room sorts to the top of the sidebar.
func (r *GormChatRepository) TouchRoom(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).Model(&domain.ChatRoom{}).
		Where("id = ?", roomID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	if err != nil {
		return fmt.Errorf("gorm: touch room %d: %w", roomID, err)
	}
	return nil
}

func (r *GormChatRepository) FindParticipant(ctx context.Context, roomID, userID uint) (*domain.ChatParticipant, error) {
	var participant domain.ChatParticipant
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("gorm: find participant (room %d, user %d): %w", roomID, userID, err)
	}
	return &participant, nil
}

func (r *GormChatRepository) ListParticipants(ctx context.Context, roomID uint) ([]domain.ChatParticipant, error) {
	var participants []domain.ChatParticipant
	err := r.db.WithContext(ctx).Preload("User").
		Where("room_id = ?", roomID).Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list participants for room %d: %w", roomID, err)
	}
	return participants, nil
}

func (r *GormChatRepository) SaveParticipant(ctx context.Context, participant *domain.ChatParticipant) error {
	err := r.db.WithContext(ctx).Omit("User").Save(participant).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save participant (room %d, user %d): %w", participant.RoomID, participant.UserID, err)
	}
	return nil
}

// ListMessages returns the tail of the room's history in chronological order.
func (r *GormChatRepository) ListMessages(ctx context.Context, roomID uint, limit int) ([]domain.ChatMessage, error) {
	query := r.db.WithContext(ctx).Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var messages []domain.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("gorm: list messages for room %d: %w", roomID, err)
	}
	// Fetched newest-first for the LIMIT; reverse into reading order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *GormChatRepository) FindMessageByUID(ctx context.Context, uid string) (*domain.ChatMessage, error) {
	var message domain.ChatMessage
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("uid = ?", uid).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}
		return nil, fmt.Errorf("gorm: find message by uid '%s': %w", uid, err)
	}
	return &message, nil
}

func (r *GormChatRepository) LastMessage(ctx context.Context, roomID uint) (*domain.ChatMessage, error) {
	var message domain.ChatMessage
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}
		return nil, fmt.Errorf("gorm: last message for room %d: %w", roomID, err)
	}
	return &message, nil
}

func (r *GormChatRepository) SaveMessage(ctx context.Context, message *domain.ChatMessage) error {
	err := r.db.WithContext(ctx).Omit("Sender").Save(message).Error
	if err != nil {
		return fmt.Errorf("gorm: save message (id: %d, room: %d): %w", message.ID, message.RoomID, err)
	}
	return nil
}

// CountUnread counts messages from other senders past the participant's
// last-read marker.
func (r *GormChatRepository) CountUnread(ctx context.Context, roomID, userID uint) (int64, error) {
	participant, err := r.FindParticipant(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return 0, nil
		}
		return 0, err
	}

	query := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_deleted = ?", roomID, userID, false)
	if participant.LastReadMessageID != nil {
		query = query.Where("id > ?", *participant.LastReadMessageID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gorm: count unread for room %d, user %d: %w", roomID, userID, err)
	}
	return count, nil
}
