package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"project-hub/internal/domain"
	"project-hub/internal/hub"
	"project-hub/internal/repository"
	"project-hub/internal/repository/mocks"
	"project-hub/internal/service"
)

func newChatService(t *testing.T) (*service.ChatService, *mocks.ChatRepository, *mocks.UserRepository, *publisherMock) {
	t.Helper()
	mockChatRepo := new(mocks.ChatRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockPublisher := new(publisherMock)
	return service.NewChatService(mockChatRepo, mockUserRepo, mockPublisher), mockChatRepo, mockUserRepo, mockPublisher
}

func TestChatService_PostMessage_BlankContentIsSilentNoOp(t *testing.T) {
	chatService, mockChatRepo, _, mockPublisher := newChatService(t)
	sender := &domain.User{ID: 1}

	for _, content := range []string{"", "   ", "\n\t "} {
		payload, err := chatService.PostMessage(context.Background(), sender, "cr-1", content)
		assert.NoError(t, err)
		assert.Nil(t, payload)
	}

	mockChatRepo.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_PostMessage_BroadcastsToRoomGroup(t *testing.T) {
	chatService, mockChatRepo, _, mockPublisher := newChatService(t)
	ctx := context.Background()
	sender := &domain.User{ID: 1, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	room := &domain.ChatRoom{ID: 10, UID: "cr-1", RoomType: domain.ChatRoomTypeChannel}

	mockChatRepo.On("FindRoomByUID", ctx, "cr-1").Return(room, nil).Once()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(1)).
		Return(&domain.ChatParticipant{RoomID: 10, UserID: 1}, nil).Once()
	mockChatRepo.On("SaveMessage", ctx, mock.MatchedBy(func(message *domain.ChatMessage) bool {
		assert.Equal(t, uint(10), message.RoomID)
		assert.Equal(t, uint(1), message.SenderID)
		assert.Equal(t, "hello team", message.Content)
		assert.NotEmpty(t, message.UID)
		return true
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.ChatMessage).ID = 99
	}).Return(nil).Once()
	mockChatRepo.On("TouchRoom", ctx, uint(10)).Return(nil).Once()

	mockPublisher.On("Publish", ctx, hub.ChatRoomGroup("cr-1"), mock.MatchedBy(func(event interface{}) bool {
		chatEvent, ok := event.(hub.ChatEvent)
		require.True(t, ok)
		assert.Equal(t, hub.EventKindChat, chatEvent.Type)
		assert.Equal(t, hub.ChatEventMessageCreated, chatEvent.EventType)
		return true
	})).Return(nil).Once()

	payload, err := chatService.PostMessage(ctx, sender, "cr-1", "hello team")

	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "hello team", payload.Content)
	assert.Equal(t, "Jane Doe", payload.SenderName)
	mockChatRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestChatService_PostMessage_NonParticipantRejected(t *testing.T) {
	chatService, mockChatRepo, _, mockPublisher := newChatService(t)
	ctx := context.Background()
	sender := &domain.User{ID: 2}
	room := &domain.ChatRoom{ID: 10, UID: "cr-1"}

	mockChatRepo.On("FindRoomByUID", ctx, "cr-1").Return(room, nil).Once()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(2)).
		Return(nil, repository.ErrParticipantNotFound).Once()

	_, err := chatService.PostMessage(ctx, sender, "cr-1", "let me in")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotParticipant))
	mockChatRepo.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_PostMessage_PublishFailureDoesNotFailSend(t *testing.T) {
	chatService, mockChatRepo, _, mockPublisher := newChatService(t)
	ctx := context.Background()
	sender := &domain.User{ID: 1, Email: "jane@example.com"}
	room := &domain.ChatRoom{ID: 10, UID: "cr-1"}

	mockChatRepo.On("FindRoomByUID", ctx, "cr-1").Return(room, nil).Once()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(1)).
		Return(&domain.ChatParticipant{RoomID: 10, UserID: 1}, nil).Once()
	mockChatRepo.On("SaveMessage", ctx, mock.Anything).Return(nil).Once()
	mockChatRepo.On("TouchRoom", ctx, uint(10)).Return(nil).Once()
	mockPublisher.On("Publish", ctx, hub.ChatRoomGroup("cr-1"), mock.Anything).
		Return(errors.New("redis down")).Once()

	payload, err := chatService.PostMessage(ctx, sender, "cr-1", "still persisted")

	require.NoError(t, err, "fan-out is best-effort; the message is already stored")
	require.NotNil(t, payload)
}

func TestChatService_IsParticipant(t *testing.T) {
	chatService, mockChatRepo, _, _ := newChatService(t)
	ctx := context.Background()
	room := &domain.ChatRoom{ID: 10, UID: "cr-1"}

	mockChatRepo.On("FindRoomByUID", ctx, "cr-1").Return(room, nil).Twice()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(1)).
		Return(&domain.ChatParticipant{RoomID: 10, UserID: 1}, nil).Once()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(2)).
		Return(nil, repository.ErrParticipantNotFound).Once()

	isMember, err := chatService.IsParticipant(ctx, "cr-1", 1)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = chatService.IsParticipant(ctx, "cr-1", 2)
	require.NoError(t, err, "not being a participant is an answer, not an error")
	assert.False(t, isMember)
}

func TestChatService_IsParticipant_UnknownRoom(t *testing.T) {
	chatService, mockChatRepo, _, _ := newChatService(t)
	ctx := context.Background()

	mockChatRepo.On("FindRoomByUID", ctx, "cr-missing").
		Return(nil, repository.ErrRoomNotFound).Once()

	_, err := chatService.IsParticipant(ctx, "cr-missing", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
}

func TestChatService_CreateDM_ReturnsExistingRoom(t *testing.T) {
	chatService, mockChatRepo, mockUserRepo, _ := newChatService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, UID: "u-1"}
	peer := &domain.User{ID: 2, UID: "u-2"}
	existing := &domain.ChatRoom{ID: 5, UID: "cr-dm", RoomType: domain.ChatRoomTypeDM}

	mockUserRepo.On("FindByUID", ctx, "u-2").Return(peer, nil).Once()
	mockChatRepo.On("FindRoomByDMKey", ctx, domain.DMKeyFor(1, 2)).Return(existing, nil).Once()

	room, err := chatService.CreateDM(ctx, actor, "u-2")

	require.NoError(t, err)
	assert.Equal(t, "cr-dm", room.UID)
	mockChatRepo.AssertNotCalled(t, "SaveRoom", mock.Anything, mock.Anything)
}

func TestChatService_CreateDM_RejectsSelf(t *testing.T) {
	chatService, _, mockUserRepo, _ := newChatService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, UID: "u-1"}

	mockUserRepo.On("FindByUID", ctx, "u-1").Return(actor, nil).Once()

	_, err := chatService.CreateDM(ctx, actor, "u-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestChatService_EditMessage_DeletedStaysDeleted(t *testing.T) {
	chatService, mockChatRepo, _, _ := newChatService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1}
	room := &domain.ChatRoom{ID: 10, UID: "cr-1"}
	deleted := &domain.ChatMessage{ID: 3, UID: "cm-3", RoomID: 10, SenderID: 1, IsDeleted: true}

	mockChatRepo.On("FindRoomByUID", ctx, "cr-1").Return(room, nil).Once()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(1)).
		Return(&domain.ChatParticipant{RoomID: 10, UserID: 1}, nil).Once()
	mockChatRepo.On("FindMessageByUID", ctx, "cm-3").Return(deleted, nil).Once()

	_, err := chatService.EditMessage(ctx, actor, "cr-1", "cm-3", "resurrect")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMessageNotFound))
	mockChatRepo.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything)
}

func TestChatService_EditMessage_OnlySenderMayEdit(t *testing.T) {
	chatService, mockChatRepo, _, _ := newChatService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 2}
	room := &domain.ChatRoom{ID: 10, UID: "cr-1"}
	message := &domain.ChatMessage{ID: 3, UID: "cm-3", RoomID: 10, SenderID: 1}

	mockChatRepo.On("FindRoomByUID", ctx, "cr-1").Return(room, nil).Once()
	mockChatRepo.On("FindParticipant", ctx, uint(10), uint(2)).
		Return(&domain.ChatParticipant{RoomID: 10, UserID: 2}, nil).Once()
	mockChatRepo.On("FindMessageByUID", ctx, "cm-3").Return(message, nil).Once()

	_, err := chatService.EditMessage(ctx, actor, "cr-1", "cm-3", "hijack")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPermissionDenied))
}
