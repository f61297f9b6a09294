package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"project-hub/internal/domain"
)

// EpicRepository is a mock of repository.EpicRepository.
type EpicRepository struct {
	mock.Mock
}

func (m *EpicRepository) FindByUID(ctx context.Context, uid string) (*domain.Epic, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Epic), args.Error(1)
}

func (m *EpicRepository) List(ctx context.Context, projectID *uint) ([]domain.Epic, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Epic), args.Error(1)
}

func (m *EpicRepository) CountByProjectID(ctx context.Context, projectID uint) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EpicRepository) Save(ctx context.Context, epic *domain.Epic) error {
	args := m.Called(ctx, epic)
	return args.Error(0)
}

func (m *EpicRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
