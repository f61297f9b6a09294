// Package worker runs the asynq server processing background tasks and the
// periodic scheduler feeding it.
package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"project-hub/internal/service"
	"project-hub/internal/tasks"
)

// WorkerServer wraps the asynq server lifecycle.
type WorkerServer struct {
	server       *asynq.Server
	scheduler    *asynq.Scheduler
	log          *logrus.Entry
	notifService *service.NotificationService
	sprintSvc    *service.SprintService
}

// NewWorkerServer creates a WorkerServer with its task handlers wired in.
func NewWorkerServer(redisOpt asynq.RedisClientOpt, notifService *service.NotificationService, sprintSvc *service.SprintService) *WorkerServer {
	if notifService == nil {
		panic("NotificationService cannot be nil for WorkerServer")
	}
	if sprintSvc == nil {
		panic("SprintService cannot be nil for WorkerServer")
	}
	logEntry := logrus.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, nil)

	return &WorkerServer{
		server:       server,
		scheduler:    scheduler,
		log:          logEntry,
		notifService: notifService,
		sprintSvc:    sprintSvc,
	}
}

// Start runs the worker server and the scheduler. Call from a goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	notifHandler := NewNotificationDispatchHandler(ws.notifService)
	mux.HandleFunc(tasks.TypeNotificationDispatch, notifHandler.ProcessTask)

	overdueHandler := NewSprintOverdueHandler(ws.sprintSvc)
	mux.HandleFunc(tasks.TypeSprintOverdueCheck, overdueHandler.ProcessTask)

	if _, err := ws.scheduler.Register("@every 6h",
		asynq.NewTask(tasks.TypeSprintOverdueCheck, nil), asynq.Queue("low")); err != nil {
		ws.log.WithError(err).Error("Failed to register sprint overdue schedule")
	}
	go func() {
		if err := ws.scheduler.Run(); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.WithError(err).Error("Scheduler stopped with error")
		}
	}()

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
		ws.log.Info("Worker server stopped.")
	}
}

// Shutdown gracefully stops the scheduler and the worker server.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.scheduler.Shutdown()
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
