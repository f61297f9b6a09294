package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"project-hub/internal/domain"
	"project-hub/internal/repository/mocks"
	"project-hub/internal/service"
)

func newSprintService(t *testing.T) (*service.SprintService, *mocks.SprintRepository, *mocks.IssueRepository, *mocks.ProjectRepository, *notifierMock) {
	t.Helper()
	mockSprintRepo := new(mocks.SprintRepository)
	mockIssueRepo := new(mocks.IssueRepository)
	mockProjectRepo := new(mocks.ProjectRepository)
	mockNotifier := new(notifierMock)
	svc := service.NewSprintService(mockSprintRepo, mockIssueRepo, mockProjectRepo, mockNotifier)
	return svc, mockSprintRepo, mockIssueRepo, mockProjectRepo, mockNotifier
}

func TestSprintService_Start_CompletesOtherActiveAndNotifies(t *testing.T) {
	svc, mockSprintRepo, _, mockProjectRepo, mockNotifier := newSprintService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, Role: domain.RoleProjectManager}
	sprint := &domain.Sprint{ID: 20, UID: "s-1", ProjectID: 3, Name: "Iteration 4", Status: domain.SprintStatusPlanned}

	mockSprintRepo.On("FindByUID", ctx, "s-1").Return(sprint, nil).Once()
	mockSprintRepo.On("CompleteOtherActive", ctx, uint(3), uint(20)).Return(int64(1), nil).Once()
	mockSprintRepo.On("Save", ctx, mock.MatchedBy(func(updated *domain.Sprint) bool {
		return updated.ID == 20 && updated.Status == domain.SprintStatusActive
	})).Return(nil).Once()
	mockProjectRepo.On("ParticipantIDs", ctx, uint(3)).Return([]uint{1, 2, 4}, nil).Once()
	mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(in service.NotificationInput) bool {
		assert.Equal(t, []uint{1, 2, 4}, in.RecipientIDs)
		assert.Equal(t, uint(1), in.ActorID, "actor exclusion happens at delivery")
		assert.Equal(t, domain.NotificationTypeSprint, in.Type)
		assert.Equal(t, "Sprint started", in.Title)
		assert.Equal(t, "s-1", in.Metadata["sprintUid"])
		return true
	})).Return(nil).Once()

	started, err := svc.Start(ctx, actor, "s-1")

	require.NoError(t, err)
	assert.Equal(t, domain.SprintStatusActive, started.Status)
	mockSprintRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestSprintService_Start_AlreadyActiveIsNoOp(t *testing.T) {
	svc, mockSprintRepo, _, _, mockNotifier := newSprintService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, Role: domain.RoleAdmin}
	sprint := &domain.Sprint{ID: 20, UID: "s-1", ProjectID: 3, Status: domain.SprintStatusActive}

	mockSprintRepo.On("FindByUID", ctx, "s-1").Return(sprint, nil).Once()

	started, err := svc.Start(ctx, actor, "s-1")

	require.NoError(t, err)
	assert.Equal(t, domain.SprintStatusActive, started.Status)
	mockSprintRepo.AssertNotCalled(t, "CompleteOtherActive", mock.Anything, mock.Anything, mock.Anything)
	mockSprintRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSprintService_Start_DeveloperDenied(t *testing.T) {
	svc, mockSprintRepo, _, _, _ := newSprintService(t)
	actor := &domain.User{ID: 5, Role: domain.RoleDeveloper}

	_, err := svc.Start(context.Background(), actor, "s-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPermissionDenied))
	mockSprintRepo.AssertNotCalled(t, "FindByUID", mock.Anything, mock.Anything)
}

func TestSprintService_Complete_MovesUnfinishedIssuesToBacklog(t *testing.T) {
	svc, mockSprintRepo, mockIssueRepo, mockProjectRepo, mockNotifier := newSprintService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, Role: domain.RoleProjectManager}
	sprint := &domain.Sprint{ID: 21, UID: "s-2", ProjectID: 3, Name: "Iteration 5", Status: domain.SprintStatusActive}

	mockSprintRepo.On("FindByUID", ctx, "s-2").Return(sprint, nil).Once()
	mockIssueRepo.On("DetachSprint", ctx, uint(21)).Return(int64(4), nil).Once()
	mockSprintRepo.On("Save", ctx, mock.MatchedBy(func(updated *domain.Sprint) bool {
		return updated.Status == domain.SprintStatusCompleted
	})).Return(nil).Once()
	mockProjectRepo.On("ParticipantIDs", ctx, uint(3)).Return([]uint{1, 2}, nil).Once()
	mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(in service.NotificationInput) bool {
		assert.Contains(t, in.Message, "4 unfinished issues moved to backlog")
		return true
	})).Return(nil).Once()

	completed, err := svc.Complete(ctx, actor, "s-2")

	require.NoError(t, err)
	assert.Equal(t, domain.SprintStatusCompleted, completed.Status)
	mockIssueRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestSprintService_Create_RejectsInvalidDates(t *testing.T) {
	svc, mockSprintRepo, _, _, _ := newSprintService(t)
	actor := &domain.User{ID: 1, Role: domain.RoleAdmin}
	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), actor, service.CreateSprintInput{
		ProjectUID: "p-1",
		Name:       "Backwards",
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, -7),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	mockSprintRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSprintService_CheckOverdue_NotifiesEachOverdueSprint(t *testing.T) {
	svc, mockSprintRepo, _, mockProjectRepo, mockNotifier := newSprintService(t)
	ctx := context.Background()

	overdue := []domain.Sprint{
		{ID: 30, UID: "s-10", ProjectID: 3, Name: "Slipped A", Status: domain.SprintStatusActive},
		{ID: 31, UID: "s-11", ProjectID: 4, Name: "Slipped B", Status: domain.SprintStatusActive},
	}
	mockSprintRepo.On("FindOverdueActive", ctx).Return(overdue, nil).Once()
	mockProjectRepo.On("ParticipantIDs", ctx, uint(3)).Return([]uint{1, 2}, nil).Once()
	mockProjectRepo.On("ParticipantIDs", ctx, uint(4)).Return([]uint{5}, nil).Once()
	mockNotifier.On("Dispatch", ctx, mock.MatchedBy(func(in service.NotificationInput) bool {
		return in.Title == "Sprint overdue" && in.ActorID == 0
	})).Return(nil).Twice()

	err := svc.CheckOverdue(ctx)

	require.NoError(t, err)
	mockNotifier.AssertExpectations(t)
}
