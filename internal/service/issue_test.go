package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"project-hub/internal/domain"
	"project-hub/internal/repository/mocks"
	"project-hub/internal/service"
)

type issueServiceFixture struct {
	svc         *service.IssueService
	issueRepo   *mocks.IssueRepository
	projectRepo *mocks.ProjectRepository
	labelRepo   *mocks.LabelRepository
	sprintRepo  *mocks.SprintRepository
	epicRepo    *mocks.EpicRepository
	userRepo    *mocks.UserRepository
	notifier    *notifierMock
}

func newIssueService(t *testing.T) *issueServiceFixture {
	t.Helper()
	f := &issueServiceFixture{
		issueRepo:   new(mocks.IssueRepository),
		projectRepo: new(mocks.ProjectRepository),
		labelRepo:   new(mocks.LabelRepository),
		sprintRepo:  new(mocks.SprintRepository),
		epicRepo:    new(mocks.EpicRepository),
		userRepo:    new(mocks.UserRepository),
		notifier:    new(notifierMock),
	}
	f.svc = service.NewIssueService(f.issueRepo, f.projectRepo, f.labelRepo, f.sprintRepo, f.epicRepo, f.userRepo, f.notifier)
	return f
}

func TestIssueService_AddComment_MentionedUsersGetMentionNotOrdinaryNotification(t *testing.T) {
	f := newIssueService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, FirstName: "Grace", LastName: "Hopper", Role: domain.RoleDeveloper}
	assigneeID := uint(9)
	issue := &domain.Issue{
		ID:         50,
		UID:        "i-1",
		Key:        "PHX-104",
		ProjectID:  3,
		ReporterID: 4,
		AssigneeID: &assigneeID,
		Watchers:   []domain.User{{ID: 2}, {ID: 3}},
	}
	bob := domain.User{ID: 3, Email: "bob@example.com", FirstName: "Bob"}

	// AddComment loads the issue, then reloads it for the watcher list
	f.issueRepo.On("FindByUID", ctx, "i-1").Return(issue, nil).Twice()
	f.issueRepo.On("SaveComment", ctx, mock.MatchedBy(func(comment *domain.IssueComment) bool {
		assert.Equal(t, uint(50), comment.IssueID)
		assert.Equal(t, uint(1), comment.AuthorID)
		assert.NotEmpty(t, comment.UID)
		return true
	})).Return(nil).Once()
	f.projectRepo.On("ParticipantIDs", ctx, uint(3)).Return([]uint{1, 2, 3, 4}, nil).Once()
	f.userRepo.On("FindByIDs", ctx, []uint{1, 2, 3, 4}).Return([]domain.User{{ID: 1}, {ID: 2}, bob, {ID: 4}}, nil).Once()

	f.notifier.On("Dispatch", ctx, mock.MatchedBy(func(in service.NotificationInput) bool {
		return in.Type == domain.NotificationTypeMention && assert.Equal(t, []uint{3}, in.RecipientIDs)
	})).Return(nil).Once()
	f.notifier.On("Dispatch", ctx, mock.MatchedBy(func(in service.NotificationInput) bool {
		if in.Type != domain.NotificationTypeComment {
			return false
		}
		// watchers 2,3 plus reporter 4 and assignee 9, minus mentioned 3
		assert.Equal(t, []uint{2, 4, 9}, in.RecipientIDs)
		assert.Contains(t, in.Message, "PHX-104")
		return true
	})).Return(nil).Once()

	comment, err := f.svc.AddComment(ctx, actor, "i-1", "looping in @bob for review")

	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, "looping in @bob for review", comment.Content)
	f.notifier.AssertExpectations(t)
	f.issueRepo.AssertExpectations(t)
}

func TestIssueService_AddComment_AssigneeNotifiedWithoutWatching(t *testing.T) {
	f := newIssueService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, FirstName: "Grace", LastName: "Hopper", Role: domain.RoleDeveloper}
	assigneeID := uint(9)
	issue := &domain.Issue{
		ID:         51,
		UID:        "i-2",
		Key:        "PHX-105",
		ProjectID:  3,
		ReporterID: 1,
		AssigneeID: &assigneeID,
	}

	f.issueRepo.On("FindByUID", ctx, "i-2").Return(issue, nil).Twice()
	f.issueRepo.On("SaveComment", ctx, mock.Anything).Return(nil).Once()

	f.notifier.On("Dispatch", ctx, mock.MatchedBy(func(in service.NotificationInput) bool {
		return in.Type == domain.NotificationTypeComment &&
			assert.Contains(t, in.RecipientIDs, assigneeID)
	})).Return(nil).Once()

	_, err := f.svc.AddComment(ctx, actor, "i-2", "status update, no mentions")

	require.NoError(t, err)
	f.notifier.AssertExpectations(t)
}

func TestIssueService_AddComment_BlankContentRejected(t *testing.T) {
	f := newIssueService(t)
	actor := &domain.User{ID: 1, Role: domain.RoleDeveloper}

	_, err := f.svc.AddComment(context.Background(), actor, "i-1", "   ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	f.issueRepo.AssertNotCalled(t, "SaveComment", mock.Anything, mock.Anything)
}

func TestIssueService_AddComment_ViewerDenied(t *testing.T) {
	f := newIssueService(t)
	actor := &domain.User{ID: 9, Role: domain.RoleViewer}

	_, err := f.svc.AddComment(context.Background(), actor, "i-1", "read-only opinion")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPermissionDenied))
}

func TestIssueService_EditComment_OnlyAuthorMayEdit(t *testing.T) {
	f := newIssueService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 2, Role: domain.RoleDeveloper}
	issue := &domain.Issue{
		ID:  50,
		UID: "i-1",
		Comments: []domain.IssueComment{
			{ID: 7, UID: "c-7", IssueID: 50, AuthorID: 1, Content: "original"},
		},
	}
	f.issueRepo.On("FindByUID", ctx, "i-1").Return(issue, nil).Once()

	_, err := f.svc.EditComment(ctx, actor, "i-1", "c-7", "rewritten")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPermissionDenied))
	f.issueRepo.AssertNotCalled(t, "SaveComment", mock.Anything, mock.Anything)
}

func TestIssueService_Move_UpdatesStatusWithoutNotification(t *testing.T) {
	f := newIssueService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, Role: domain.RoleDeveloper}
	issue := &domain.Issue{ID: 50, UID: "i-1", ReporterID: 1, Status: domain.IssueStatusTodo}

	f.issueRepo.On("FindByUID", ctx, "i-1").Return(issue, nil).Once()
	f.issueRepo.On("Save", ctx, mock.MatchedBy(func(saved *domain.Issue) bool {
		return saved.Status == domain.IssueStatusInProgress
	})).Return(nil).Once()

	moved, err := f.svc.Move(ctx, actor, "i-1", domain.IssueStatusInProgress)

	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, moved.Status)
	f.notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	f.issueRepo.AssertExpectations(t)
}

func TestIssueService_Move_RejectsUnknownStatus(t *testing.T) {
	f := newIssueService(t)
	actor := &domain.User{ID: 1, Role: domain.RoleAdmin}

	_, err := f.svc.Move(context.Background(), actor, "i-1", "parked")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	f.issueRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIssueService_LogTime_RejectsNonPositiveHours(t *testing.T) {
	f := newIssueService(t)
	actor := &domain.User{ID: 1, Role: domain.RoleDeveloper}

	for _, hours := range []float64{0, -2.5} {
		_, err := f.svc.LogTime(context.Background(), actor, "i-1", hours)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrInvalidInput))
	}
	f.issueRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIssueService_AddLink_RejectsSelfLink(t *testing.T) {
	f := newIssueService(t)
	ctx := context.Background()
	actor := &domain.User{ID: 1, Role: domain.RoleDeveloper}
	issue := &domain.Issue{ID: 50, UID: "i-1", ReporterID: 1}

	f.issueRepo.On("FindByUID", ctx, "i-1").Return(issue, nil).Twice()

	_, err := f.svc.AddLink(ctx, actor, "i-1", "i-1", domain.LinkTypeBlocks)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	f.issueRepo.AssertNotCalled(t, "SaveLink", mock.Anything, mock.Anything)
}
