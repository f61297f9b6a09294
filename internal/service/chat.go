package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/hub"
	"project-hub/internal/repository"
)

// MessagePayload is the wire shape of a chat message, shared by the HTTP API
// and the chat_event frames.
type MessagePayload struct {
	ID           string `json:"id"`
	RoomID       string `json:"roomId"`
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	SenderAvatar string `json:"senderAvatar"`
	Content      string `json:"content"`
	IsEdited     bool   `json:"isEdited"`
	IsDeleted    bool   `json:"isDeleted"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// RoomSummary is the sidebar shape of a room: the room plus per-viewer state.
type RoomSummary struct {
	Room         *domain.ChatRoom
	Participants []domain.ChatParticipant
	LastMessage  *domain.ChatMessage
	UnreadCount  int64
}

// ChatService handles rooms, messages and their fan-out. Both the HTTP
// endpoints and the WebSocket inbound path go through PostMessage, so
// membership checks and event publication happen exactly once.
type ChatService struct {
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	publisher hub.Publisher
}

// NewChatService creates a ChatService.
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, publisher hub.Publisher) *ChatService {
	if chatRepo == nil {
		panic("ChatRepository cannot be nil for ChatService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for ChatService")
	}
	if publisher == nil {
		panic("Publisher cannot be nil for ChatService")
	}
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo, publisher: publisher}
}

// RenderMessage projects a message onto its wire shape.
func RenderMessage(m *domain.ChatMessage, room *domain.ChatRoom) MessagePayload {
	content := m.Content
	if m.IsDeleted {
		content = ""
	}
	return MessagePayload{
		ID:           m.UID,
		RoomID:       room.UID,
		SenderID:     m.Sender.UID,
		SenderName:   m.Sender.FullName(),
		SenderAvatar: m.Sender.Avatar,
		Content:      content,
		IsEdited:     m.IsEdited,
		IsDeleted:    m.IsDeleted,
		CreatedAt:    m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// IsParticipant reports whether the user belongs to the room. This is the
// authorization gate for joining a room's broadcast group.
func (s *ChatService) IsParticipant(ctx context.Context, roomUID string, userID uint) (bool, error) {
	room, err := s.chatRepo.FindRoomByUID(ctx, roomUID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return false, ErrRoomNotFound
		}
		logrus.WithError(err).Error("Failed to find room")
		return false, ErrInternalServer
	}
	_, err = s.chatRepo.FindParticipant(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return false, nil
		}
		logrus.WithError(err).Error("Failed to check participant")
		return false, ErrInternalServer
	}
	return true, nil
}

// ListRooms returns the user's rooms newest activity first, each with its
// participants, last message and the viewer's unread count.
func (s *ChatService) ListRooms(ctx context.Context, userID uint) ([]RoomSummary, error) {
	rooms, err := s.chatRepo.ListRoomsByUserID(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list rooms")
		return nil, ErrInternalServer
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		summary := RoomSummary{Room: room}

		if participants, err := s.chatRepo.ListParticipants(ctx, room.ID); err == nil {
			summary.Participants = participants
		} else {
			logrus.WithError(err).WithField("room_id", room.ID).Warn("Failed to load room participants")
		}
		if last, err := s.chatRepo.LastMessage(ctx, room.ID); err == nil {
			summary.LastMessage = last
		} else if !errors.Is(err, repository.ErrMessageNotFound) {
			logrus.WithError(err).WithField("room_id", room.ID).Warn("Failed to load last message")
		}
		if unread, err := s.chatRepo.CountUnread(ctx, room.ID, userID); err == nil {
			summary.UnreadCount = unread
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetRoom loads a room the user participates in.
func (s *ChatService) GetRoom(ctx context.Context, roomUID string, userID uint) (*domain.ChatRoom, error) {
	room, err := s.chatRepo.FindRoomByUID(ctx, roomUID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).Error("Failed to find room")
		return nil, ErrInternalServer
	}
	if _, err := s.chatRepo.FindParticipant(ctx, room.ID, userID); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, ErrInternalServer
	}
	return room, nil
}

// CreateDM returns the direct-message room between the actor and the peer,
// creating it on first use. The canonical dm key makes creation idempotent
// regardless of who initiates.
func (s *ChatService) CreateDM(ctx context.Context, actor *domain.User, peerUID string) (*domain.ChatRoom, error) {
	peer, err := s.userRepo.FindByUID(ctx, peerUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to find DM peer")
		return nil, ErrInternalServer
	}
	if peer.ID == actor.ID {
		return nil, ErrInvalidInput
	}

	dmKey := domain.DMKeyFor(actor.ID, peer.ID)
	if room, err := s.chatRepo.FindRoomByDMKey(ctx, dmKey); err == nil {
		return room, nil
	} else if !errors.Is(err, repository.ErrRoomNotFound) {
		logrus.WithError(err).Error("Failed to look up DM room")
		return nil, ErrInternalServer
	}

	room := &domain.ChatRoom{
		UID:         domain.NewChatRoomUID(),
		RoomType:    domain.ChatRoomTypeDM,
		IsPrivate:   true,
		DMKey:       &dmKey,
		CreatedByID: &actor.ID,
	}
	if err := s.chatRepo.SaveRoom(ctx, room); err != nil {
		// A concurrent first message may have won the race on the dm key.
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return s.chatRepo.FindRoomByDMKey(ctx, dmKey)
		}
		logrus.WithError(err).Error("Failed to create DM room")
		return nil, ErrInternalServer
	}

	for _, userID := range []uint{actor.ID, peer.ID} {
		participant := &domain.ChatParticipant{RoomID: room.ID, UserID: userID, Role: domain.ChatRoleMember}
		if err := s.chatRepo.SaveParticipant(ctx, participant); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to add DM participant")
			return nil, ErrInternalServer
		}
	}
	logrus.WithFields(logrus.Fields{"room_id": room.ID, "dm_key": dmKey}).Info("DM room created")
	return room, nil
}

// CreateChannel creates a named channel with the actor as owner.
func (s *ChatService) CreateChannel(ctx context.Context, actor *domain.User, name string, isPrivate bool, memberUIDs []string) (*domain.ChatRoom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	room := &domain.ChatRoom{
		UID:         domain.NewChatRoomUID(),
		RoomType:    domain.ChatRoomTypeChannel,
		Name:        name,
		IsPrivate:   isPrivate,
		CreatedByID: &actor.ID,
	}
	if err := s.chatRepo.SaveRoom(ctx, room); err != nil {
		logrus.WithError(err).Error("Failed to create channel")
		return nil, ErrInternalServer
	}

	owner := &domain.ChatParticipant{RoomID: room.ID, UserID: actor.ID, Role: domain.ChatRoleOwner}
	if err := s.chatRepo.SaveParticipant(ctx, owner); err != nil {
		logrus.WithError(err).Error("Failed to add channel owner")
		return nil, ErrInternalServer
	}

	for _, memberUID := range memberUIDs {
		user, err := s.userRepo.FindByUID(ctx, memberUID)
		if err != nil {
			logrus.WithField("uid", memberUID).Warn("Skipping unknown channel member")
			continue
		}
		if user.ID == actor.ID {
			continue
		}
		member := &domain.ChatParticipant{RoomID: room.ID, UserID: user.ID, Role: domain.ChatRoleMember}
		if err := s.chatRepo.SaveParticipant(ctx, member); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to add channel member")
		}
	}

	logrus.WithFields(logrus.Fields{"room_id": room.ID, "name": name}).Info("Channel created")
	return room, nil
}

// AddParticipant adds a user to a channel. Only current participants may
// invite; DM rooms never grow.
func (s *ChatService) AddParticipant(ctx context.Context, actor *domain.User, roomUID, userUID string) error {
	room, err := s.GetRoom(ctx, roomUID, actor.ID)
	if err != nil {
		return err
	}
	if room.RoomType == domain.ChatRoomTypeDM {
		return ErrInvalidInput
	}
	user, err := s.userRepo.FindByUID(ctx, userUID)
	if err != nil {
		return ErrUserNotFound
	}
	if _, err := s.chatRepo.FindParticipant(ctx, room.ID, user.ID); err == nil {
		return nil // already a member
	}
	participant := &domain.ChatParticipant{RoomID: room.ID, UserID: user.ID, Role: domain.ChatRoleMember}
	if err := s.chatRepo.SaveParticipant(ctx, participant); err != nil {
		logrus.WithError(err).Error("Failed to add participant")
		return ErrInternalServer
	}
	return nil
}

// ListMessages returns the tail of a room's history for a participant.
func (s *ChatService) ListMessages(ctx context.Context, roomUID string, userID uint, limit int) ([]MessagePayload, error) {
	room, err := s.GetRoom(ctx, roomUID, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	messages, err := s.chatRepo.ListMessages(ctx, room.ID, limit)
	if err != nil {
		logrus.WithError(err).WithField("room_id", room.ID).Error("Failed to list messages")
		return nil, ErrInternalServer
	}
	payloads := make([]MessagePayload, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, RenderMessage(&messages[i], room))
	}
	return payloads, nil
}

// PostMessage persists a message and broadcasts a message_created event to the
// room's group. Blank content is a silent no-op: nothing is stored, nothing is
// published, and no error is returned. Membership is re-checked on every send,
// so a participant removed mid-session loses the ability to post immediately.
func (s *ChatService) PostMessage(ctx context.Context, sender *domain.User, roomUID, content string) (*MessagePayload, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	room, err := s.chatRepo.FindRoomByUID(ctx, roomUID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).Error("Failed to find room for message")
		return nil, ErrInternalServer
	}
	if _, err := s.chatRepo.FindParticipant(ctx, room.ID, sender.ID); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, ErrNotParticipant
		}
		logrus.WithError(err).Error("Failed to check sender membership")
		return nil, ErrInternalServer
	}

	message := &domain.ChatMessage{
		UID:      domain.NewChatMessageUID(),
		RoomID:   room.ID,
		SenderID: sender.ID,
		Content:  content,
	}
	if err := s.chatRepo.SaveMessage(ctx, message); err != nil {
		logrus.WithError(err).WithField("room_id", room.ID).Error("Failed to save message")
		return nil, ErrInternalServer
	}
	if err := s.chatRepo.TouchRoom(ctx, room.ID); err != nil {
		logrus.WithError(err).WithField("room_id", room.ID).Warn("Failed to touch room activity")
	}
	message.Sender = *sender

	payload := RenderMessage(message, room)
	s.broadcast(ctx, room.UID, hub.ChatEventMessageCreated, payload)
	return &payload, nil
}

// EditMessage updates a message's content and broadcasts message_updated.
// Only the sender may edit, and deleted messages stay deleted.
func (s *ChatService) EditMessage(ctx context.Context, actor *domain.User, roomUID, messageUID, content string) (*MessagePayload, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	room, err := s.GetRoom(ctx, roomUID, actor.ID)
	if err != nil {
		return nil, err
	}
	message, err := s.chatRepo.FindMessageByUID(ctx, messageUID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		logrus.WithError(err).Error("Failed to find message for edit")
		return nil, ErrInternalServer
	}
	if message.RoomID != room.ID {
		return nil, ErrMessageNotFound
	}
	if message.SenderID != actor.ID {
		return nil, ErrPermissionDenied
	}
	if message.IsDeleted {
		return nil, ErrMessageNotFound
	}

	now := time.Now()
	message.Content = content
	message.IsEdited = true
	message.EditedAt = &now
	if err := s.chatRepo.SaveMessage(ctx, message); err != nil {
		logrus.WithError(err).Error("Failed to save message edit")
		return nil, ErrInternalServer
	}

	payload := RenderMessage(message, room)
	s.broadcast(ctx, room.UID, hub.ChatEventMessageUpdated, payload)
	return &payload, nil
}

// DeleteMessage soft-deletes a message and broadcasts message_deleted. The row
// survives with blanked content so ordering and read markers stay stable.
func (s *ChatService) DeleteMessage(ctx context.Context, actor *domain.User, roomUID, messageUID string) error {
	room, err := s.GetRoom(ctx, roomUID, actor.ID)
	if err != nil {
		return err
	}
	message, err := s.chatRepo.FindMessageByUID(ctx, messageUID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		logrus.WithError(err).Error("Failed to find message for delete")
		return ErrInternalServer
	}
	if message.RoomID != room.ID {
		return ErrMessageNotFound
	}
	if message.SenderID != actor.ID && actor.Role != domain.RoleAdmin {
		return ErrPermissionDenied
	}
	if message.IsDeleted {
		return nil
	}

	now := time.Now()
	message.IsDeleted = true
	message.DeletedAt = &now
	if err := s.chatRepo.SaveMessage(ctx, message); err != nil {
		logrus.WithError(err).Error("Failed to soft-delete message")
		return ErrInternalServer
	}

	s.broadcast(ctx, room.UID, hub.ChatEventMessageDeleted, RenderMessage(message, room))
	return nil
}

// MarkRead advances the participant's read marker to the room's newest message
// and broadcasts a read_receipt.
func (s *ChatService) MarkRead(ctx context.Context, actor *domain.User, roomUID string) error {
	room, err := s.chatRepo.FindRoomByUID(ctx, roomUID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return ErrInternalServer
	}
	participant, err := s.chatRepo.FindParticipant(ctx, room.ID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return ErrNotParticipant
		}
		return ErrInternalServer
	}

	last, err := s.chatRepo.LastMessage(ctx, room.ID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil // empty room, nothing to mark
		}
		logrus.WithError(err).Error("Failed to load last message for read marker")
		return ErrInternalServer
	}

	if participant.LastReadMessageID != nil && *participant.LastReadMessageID >= last.ID {
		return nil
	}
	now := time.Now()
	participant.LastReadMessageID = &last.ID
	participant.LastReadAt = &now
	if err := s.chatRepo.SaveParticipant(ctx, participant); err != nil {
		logrus.WithError(err).Error("Failed to save read marker")
		return ErrInternalServer
	}

	s.broadcast(ctx, room.UID, hub.ChatEventReadReceipt, map[string]interface{}{
		"roomId":        room.UID,
		"userId":        actor.UID,
		"lastMessageId": last.UID,
		"readAt":        now.UTC().Format(time.RFC3339),
	})
	return nil
}

// PublishTyping broadcasts a typing indicator without persisting anything.
func (s *ChatService) PublishTyping(ctx context.Context, actor *domain.User, roomUID string, typing bool) {
	eventType := hub.ChatEventTypingStop
	if typing {
		eventType = hub.ChatEventTypingStart
	}
	s.broadcast(ctx, roomUID, eventType, map[string]interface{}{
		"roomId":   roomUID,
		"userId":   actor.UID,
		"userName": actor.FullName(),
	})
}

// broadcast publishes a chat event to the room's group. Failures are logged
// and dropped; chat fan-out is best-effort.
func (s *ChatService) broadcast(ctx context.Context, roomUID, eventType string, payload interface{}) {
	event := hub.NewChatEvent(eventType, payload)
	if err := s.publisher.Publish(ctx, hub.ChatRoomGroup(roomUID), event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"room_uid":   roomUID,
			"event_type": eventType,
		}).Warn("Failed to publish chat event")
	}
}
