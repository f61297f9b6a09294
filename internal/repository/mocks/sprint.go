package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"project-hub/internal/domain"
)

// SprintRepository is a mock of repository.SprintRepository.
type SprintRepository struct {
	mock.Mock
}

func (m *SprintRepository) FindByUID(ctx context.Context, uid string) (*domain.Sprint, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sprint), args.Error(1)
}

func (m *SprintRepository) List(ctx context.Context, projectID *uint) ([]domain.Sprint, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sprint), args.Error(1)
}

func (m *SprintRepository) FindActiveByProjectID(ctx context.Context, projectID uint) (*domain.Sprint, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sprint), args.Error(1)
}

func (m *SprintRepository) CompleteOtherActive(ctx context.Context, projectID, exceptID uint) (int64, error) {
	args := m.Called(ctx, projectID, exceptID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SprintRepository) FindOverdueActive(ctx context.Context) ([]domain.Sprint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sprint), args.Error(1)
}

func (m *SprintRepository) Save(ctx context.Context, sprint *domain.Sprint) error {
	args := m.Called(ctx, sprint)
	return args.Error(0)
}

func (m *SprintRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
