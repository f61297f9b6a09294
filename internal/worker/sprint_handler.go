package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"project-hub/internal/service"
)

// SprintOverdueHandler runs the periodic overdue-sprint check.
type SprintOverdueHandler struct {
	sprintSvc *service.SprintService
}

// NewSprintOverdueHandler creates the handler.
func NewSprintOverdueHandler(sprintSvc *service.SprintService) *SprintOverdueHandler {
	return &SprintOverdueHandler{sprintSvc: sprintSvc}
}

// ProcessTask implements asynq.Handler.
func (h *SprintOverdueHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logrus.WithField("task_type", t.Type()).Info("Running sprint overdue check")
	if err := h.sprintSvc.CheckOverdue(ctx); err != nil {
		return fmt.Errorf("sprint overdue check: %w", err)
	}
	return nil
}
