package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"project-hub/internal/service"
)

// publisherMock captures events published to broadcast groups.
type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, group string, event interface{}) error {
	args := m.Called(ctx, group, event)
	return args.Error(0)
}

// notifierMock captures notification dispatches from producer services.
type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Dispatch(ctx context.Context, in service.NotificationInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}
