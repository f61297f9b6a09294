package repository

import (
	"context"

	"project-hub/internal/domain"
)

// ChatRepository defines storage and retrieval of chat rooms, participants and
// messages.
type ChatRepository interface {
	// FindRoomByUID looks a room up by external uid.
	FindRoomByUID(ctx context.Context, uid string) (*domain.ChatRoom, error)

	// FindRoomByDMKey returns the direct-message room for a canonical dm key,
	// or ErrRoomNotFound.
	FindRoomByDMKey(ctx context.Context, dmKey string) (*domain.ChatRoom, error)

	// ListRoomsByUserID returns the rooms the user participates in, most
	// recently active first.
	ListRoomsByUserID(ctx context.Context, userID uint) ([]domain.ChatRoom, error)

	// SaveRoom creates or updates a room.
	SaveRoom(ctx context.Context, room *domain.ChatRoom) error

	// TouchRoom bumps the room's last-activity timestamp.
	TouchRoom(ctx context.Context, roomID uint) error

	// FindParticipant returns the membership row for (room, user), or
	// ErrParticipantNotFound. This is the authorization check for joining a
	// room's broadcast group and for every message send.
	FindParticipant(ctx context.Context, roomID, userID uint) (*domain.ChatParticipant, error)

	// ListParticipants returns all memberships of a room with users preloaded.
	ListParticipants(ctx context.Context, roomID uint) ([]domain.ChatParticipant, error)

	// SaveParticipant creates or updates a membership row.
	SaveParticipant(ctx context.Context, participant *domain.ChatParticipant) error

	// ListMessages returns the room's messages in creation order, at most
	// limit rows from the tail when limit > 0.
	ListMessages(ctx context.Context, roomID uint, limit int) ([]domain.ChatMessage, error)

	// FindMessageByUID looks a message up by uid with the sender preloaded.
	FindMessageByUID(ctx context.Context, uid string) (*domain.ChatMessage, error)

	// LastMessage returns the newest message of a room, or ErrMessageNotFound
	// for an empty room.
	LastMessage(ctx context.Context, roomID uint) (*domain.ChatMessage, error)

	// SaveMessage creates or updates a message.
	SaveMessage(ctx context.Context, message *domain.ChatMessage) error

	// CountUnread returns how many messages in the room were created after the
	// participant's last-read marker by other senders.
	CountUnread(ctx context.Context, roomID, userID uint) (int64, error)
}
