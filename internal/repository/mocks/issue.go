package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// IssueRepository is a mock of repository.IssueRepository.
type IssueRepository struct {
	mock.Mock
}

func (m *IssueRepository) FindByUID(ctx context.Context, uid string) (*domain.Issue, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *IssueRepository) FindByKey(ctx context.Context, key string) (*domain.Issue, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *IssueRepository) List(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}

func (m *IssueRepository) ListBySprintID(ctx context.Context, sprintID uint) ([]domain.Issue, error) {
	args := m.Called(ctx, sprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}

func (m *IssueRepository) CountByProjectID(ctx context.Context, projectID uint) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *IssueRepository) Save(ctx context.Context, issue *domain.Issue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *IssueRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *IssueRepository) SetLabels(ctx context.Context, issue *domain.Issue, labels []domain.Label) error {
	args := m.Called(ctx, issue, labels)
	return args.Error(0)
}

func (m *IssueRepository) AddWatcher(ctx context.Context, issue *domain.Issue, user *domain.User) error {
	args := m.Called(ctx, issue, user)
	return args.Error(0)
}

func (m *IssueRepository) RemoveWatcher(ctx context.Context, issue *domain.Issue, user *domain.User) error {
	args := m.Called(ctx, issue, user)
	return args.Error(0)
}

func (m *IssueRepository) IsWatching(ctx context.Context, issueID, userID uint) (bool, error) {
	args := m.Called(ctx, issueID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *IssueRepository) DetachSprint(ctx context.Context, sprintID uint) (int64, error) {
	args := m.Called(ctx, sprintID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *IssueRepository) SaveComment(ctx context.Context, comment *domain.IssueComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *IssueRepository) SaveLink(ctx context.Context, link *domain.IssueLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *IssueRepository) DeleteLink(ctx context.Context, issueID uint, linkUID string) error {
	args := m.Called(ctx, issueID, linkUID)
	return args.Error(0)
}
