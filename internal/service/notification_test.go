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
	"project-hub/internal/repository/mocks"
	"project-hub/internal/service"
)

func TestNotificationService_Deliver_DedupesAndExcludesActor(t *testing.T) {
	mockRepo := new(mocks.NotificationRepository)
	mockPublisher := new(publisherMock)
	// nil asynq client: Dispatch falls through to synchronous Deliver
	notifService := service.NewNotificationService(mockRepo, mockPublisher, nil)
	ctx := context.Background()

	mockRepo.On("BulkCreate", ctx, mock.MatchedBy(func(notifications []domain.Notification) bool {
		// recipients 2 and 3 only: 1 is the actor, 2 appears twice, 0 is dropped
		require.Len(t, notifications, 2)
		assert.Equal(t, uint(2), notifications[0].UserID)
		assert.Equal(t, uint(3), notifications[1].UserID)
		for _, n := range notifications {
			assert.NotEmpty(t, n.UID)
			assert.Equal(t, "Issue assigned", n.Title)
			assert.Equal(t, domain.NotificationTypeAssignment, n.Type)
		}
		return true
	})).Return(nil).Once()

	mockPublisher.On("Publish", ctx, hub.NotificationGroup(2), mock.Anything).Return(nil).Once()
	mockPublisher.On("Publish", ctx, hub.NotificationGroup(3), mock.Anything).Return(nil).Once()

	err := notifService.Deliver(ctx, service.NotificationInput{
		RecipientIDs: []uint{1, 2, 2, 3, 0},
		ActorID:      1,
		Type:         domain.NotificationTypeAssignment,
		Title:        "Issue assigned",
		Message:      "You were assigned PHX-104",
	})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestNotificationService_Deliver_NoEffectiveRecipients(t *testing.T) {
	mockRepo := new(mocks.NotificationRepository)
	mockPublisher := new(publisherMock)
	notifService := service.NewNotificationService(mockRepo, mockPublisher, nil)

	err := notifService.Deliver(context.Background(), service.NotificationInput{
		RecipientIDs: []uint{4, 4},
		ActorID:      4,
		Type:         domain.NotificationTypeAssignment,
		Title:        "Self action",
	})

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_Deliver_PublishFailureDoesNotBlockOthers(t *testing.T) {
	mockRepo := new(mocks.NotificationRepository)
	mockPublisher := new(publisherMock)
	notifService := service.NewNotificationService(mockRepo, mockPublisher, nil)
	ctx := context.Background()

	mockRepo.On("BulkCreate", ctx, mock.Anything).Return(nil).Once()
	mockPublisher.On("Publish", ctx, hub.NotificationGroup(2), mock.Anything).
		Return(errors.New("redis down")).Once()
	mockPublisher.On("Publish", ctx, hub.NotificationGroup(3), mock.Anything).Return(nil).Once()

	err := notifService.Deliver(ctx, service.NotificationInput{
		RecipientIDs: []uint{2, 3},
		ActorID:      1,
		Type:         domain.NotificationTypeSprint,
		Title:        "Sprint started",
	})

	require.NoError(t, err, "a publish failure is best-effort, not an error")
	mockPublisher.AssertExpectations(t)
}

func TestNotificationService_MarkRead_SignalsOwnerGroup(t *testing.T) {
	mockRepo := new(mocks.NotificationRepository)
	mockPublisher := new(publisherMock)
	notifService := service.NewNotificationService(mockRepo, mockPublisher, nil)
	ctx := context.Background()

	notification := &domain.Notification{ID: 42, UID: "n-1", UserID: 7, IsRead: false}
	mockRepo.On("FindByUID", ctx, "n-1", uint(7)).Return(notification, nil).Once()
	mockRepo.On("MarkRead", ctx, uint(42)).Return(nil).Once()
	mockPublisher.On("Publish", ctx, hub.NotificationGroup(7),
		hub.NewNotificationEvent(hub.NotificationEventRead)).Return(nil).Once()

	err := notifService.MarkRead(ctx, 7, "n-1")

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestNotificationService_MarkAllRead_NoSignalWhenNothingChanged(t *testing.T) {
	mockRepo := new(mocks.NotificationRepository)
	mockPublisher := new(publisherMock)
	notifService := service.NewNotificationService(mockRepo, mockPublisher, nil)
	ctx := context.Background()

	mockRepo.On("MarkAllRead", ctx, uint(7)).Return(int64(0), nil).Once()

	updated, err := notifService.MarkAllRead(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
