package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"project-hub/internal/domain"
)

// ChatRepository is a mock of repository.ChatRepository.
type ChatRepository struct {
	mock.Mock
}

func (m *ChatRepository) FindRoomByUID(ctx context.Context, uid string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatRoom), args.Error(1)
}

func (m *ChatRepository) FindRoomByDMKey(ctx context.Context, dmKey string) (*domain.ChatRoom, error) {
	args := m.Called(ctx, dmKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatRoom), args.Error(1)
}

func (m *ChatRepository) ListRoomsByUserID(ctx context.Context, userID uint) ([]domain.ChatRoom, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatRoom), args.Error(1)
}

func (m *ChatRepository) SaveRoom(ctx context.Context, room *domain.ChatRoom) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *ChatRepository) TouchRoom(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *ChatRepository) FindParticipant(ctx context.Context, roomID, userID uint) (*domain.ChatParticipant, error) {
	args := m.Called(ctx, roomID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatParticipant), args.Error(1)
}

func (m *ChatRepository) ListParticipants(ctx context.Context, roomID uint) ([]domain.ChatParticipant, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatParticipant), args.Error(1)
}

func (m *ChatRepository) SaveParticipant(ctx context.Context, participant *domain.ChatParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *ChatRepository) ListMessages(ctx context.Context, roomID uint, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

func (m *ChatRepository) FindMessageByUID(ctx context.Context, uid string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *ChatRepository) LastMessage(ctx context.Context, roomID uint) (*domain.ChatMessage, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *ChatRepository) SaveMessage(ctx context.Context, message *domain.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *ChatRepository) CountUnread(ctx context.Context, roomID, userID uint) (int64, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Get(0).(int64), args.Error(1)
}
