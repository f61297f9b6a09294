package service

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/hub"
	"project-hub/internal/repository"
	"project-hub/internal/tasks"
)

// NotificationInput describes one notification event before fan-out.
// RecipientIDs may contain duplicates and the acting user; Deliver dedupes and
// never notifies the actor about their own action.
type NotificationInput struct {
	RecipientIDs []uint
	ActorID      uint
	Type         string
	Title        string
	Message      string
	ActionURL    string
	Metadata     map[string]string
}

// Notifier is the producer-side surface: enqueue a notification for
// asynchronous delivery. Implemented by NotificationService; producers depend
// on this interface so tests can capture dispatches.
type Notifier interface {
	Dispatch(ctx context.Context, in NotificationInput) error
}

// NotificationService persists notifications and pushes change signals to the
// recipients' personal groups.
type NotificationService struct {
	notifRepo   repository.NotificationRepository
	publisher   hub.Publisher
	asynqClient *asynq.Client
}

// NewNotificationService creates a NotificationService. The asynq client may
// be nil, in which case Dispatch delivers synchronously (tests, one-process
// setups without a worker).
func NewNotificationService(notifRepo repository.NotificationRepository, publisher hub.Publisher, asynqClient *asynq.Client) *NotificationService {
	if notifRepo == nil {
		panic("NotificationRepository cannot be nil for NotificationService")
	}
	if publisher == nil {
		panic("Publisher cannot be nil for NotificationService")
	}
	return &NotificationService{
		notifRepo:   notifRepo,
		publisher:   publisher,
		asynqClient: asynqClient,
	}
}

// Dispatch hands the notification to the worker queue. Dispatch failures are
// logged and swallowed: notifications are best-effort and must never fail the
// operation that produced them.
func (s *NotificationService) Dispatch(ctx context.Context, in NotificationInput) error {
	if s.asynqClient == nil {
		return s.Deliver(ctx, in)
	}

	payload, err := tasks.NewNotificationDispatchTask(tasks.NotificationDispatchPayload{
		RecipientIDs: in.RecipientIDs,
		ActorID:      in.ActorID,
		Type:         in.Type,
		Title:        in.Title,
		Message:      in.Message,
		ActionURL:    in.ActionURL,
		Metadata:     in.Metadata,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to serialize notification dispatch task")
		return nil
	}

	task := asynq.NewTask(tasks.TypeNotificationDispatch, payload)
	if _, err := s.asynqClient.EnqueueContext(ctx, task, asynq.Queue("default")); err != nil {
		logrus.WithError(err).WithField("type", in.Type).Error("Failed to enqueue notification dispatch task")
	}
	return nil
}

// Deliver persists one notification row per effective recipient and publishes
// a "created" signal to each recipient's personal group. A publish failure for
// one recipient never blocks the others.
func (s *NotificationService) Deliver(ctx context.Context, in NotificationInput) error {
	recipients := effectiveRecipients(in.RecipientIDs, in.ActorID)
	if len(recipients) == 0 {
		return nil
	}

	notifications := make([]domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n := domain.Notification{
			UID:     domain.NewNotificationUID(),
			UserID:  userID,
			Title:   in.Title,
			Message: in.Message,
			Type:    in.Type,
		}
		n.ActionURL = in.ActionURL
		if err := n.SetMetadata(in.Metadata); err != nil {
			logrus.WithError(err).Warn("Failed to encode notification metadata, storing empty")
			n.Metadata = "{}"
		}
		notifications = append(notifications, n)
	}

	if err := s.notifRepo.BulkCreate(ctx, notifications); err != nil {
		logrus.WithError(err).WithField("recipients", len(recipients)).Error("Failed to persist notifications")
		return ErrInternalServer
	}

	event := hub.NewNotificationEvent(hub.NotificationEventCreated)
	for _, userID := range recipients {
		if err := s.publisher.Publish(ctx, hub.NotificationGroup(userID), event); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to publish notification signal")
		}
	}
	logrus.WithFields(logrus.Fields{
		"type":       in.Type,
		"recipients": len(recipients),
	}).Info("Notifications delivered")
	return nil
}

// effectiveRecipients dedupes the recipient list and drops the actor.
func effectiveRecipients(ids []uint, actorID uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || id == actorID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// List returns the user's notifications plus the unread count.
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	notifications, err := s.notifRepo.ListByUserID(ctx, userID, unreadOnly, limit)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list notifications")
		return nil, 0, ErrInternalServer
	}
	unread, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to count unread notifications")
		return nil, 0, ErrInternalServer
	}
	return notifications, unread, nil
}

// CountUnread returns the user's unread notification count (badge polling).
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to count unread notifications")
		return 0, ErrInternalServer
	}
	return count, nil
}

// MarkRead flags one notification read and signals the owner's group so other
// sessions refresh their badge.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, uid string) error {
	notification, err := s.notifRepo.FindByUID(ctx, uid, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		logrus.WithError(err).Error("Failed to find notification")
		return ErrInternalServer
	}
	if !notification.IsRead {
		if err := s.notifRepo.MarkRead(ctx, notification.ID); err != nil {
			logrus.WithError(err).Error("Failed to mark notification read")
			return ErrInternalServer
		}
	}
	s.signal(ctx, userID, hub.NotificationEventRead)
	return nil
}

// MarkAllRead flags every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	updated, err := s.notifRepo.MarkAllRead(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to mark all notifications read")
		return 0, ErrInternalServer
	}
	if updated > 0 {
		s.signal(ctx, userID, hub.NotificationEventReadAll)
	}
	return updated, nil
}

func (s *NotificationService) signal(ctx context.Context, userID uint, event string) {
	err := s.publisher.Publish(ctx, hub.NotificationGroup(userID), hub.NewNotificationEvent(event))
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to publish notification signal")
	}
}
