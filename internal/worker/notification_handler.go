package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"project-hub/internal/service"
	"project-hub/internal/tasks"
)

// NotificationDispatchHandler processes queued notification deliveries.
type NotificationDispatchHandler struct {
	notifService *service.NotificationService
}

// NewNotificationDispatchHandler creates the handler.
func NewNotificationDispatchHandler(notifService *service.NotificationService) *NotificationDispatchHandler {
	return &NotificationDispatchHandler{notifService: notifService}
}

// ProcessTask implements asynq.Handler: persist the notification rows and push
// the change signal to each recipient's group.
func (h *NotificationDispatchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	payload, err := tasks.ParseNotificationDispatchTask(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	err = h.notifService.Deliver(ctx, service.NotificationInput{
		RecipientIDs: payload.RecipientIDs,
		ActorID:      payload.ActorID,
		Type:         payload.Type,
		Title:        payload.Title,
		Message:      payload.Message,
		ActionURL:    payload.ActionURL,
		Metadata:     payload.Metadata,
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to deliver notifications")
		return fmt.Errorf("failed to deliver notifications: %w", err)
	}

	logCtx.WithField("recipients", len(payload.RecipientIDs)).Info("Notification dispatch task processed")
	return nil
}
