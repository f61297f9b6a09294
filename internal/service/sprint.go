package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// SprintService handles sprint lifecycle management.
type SprintService struct {
	sprintRepo  repository.SprintRepository
	issueRepo   repository.IssueRepository
	projectRepo repository.ProjectRepository
	notifier    Notifier
}

// NewSprintService creates a SprintService.
func NewSprintService(sprintRepo repository.SprintRepository, issueRepo repository.IssueRepository, projectRepo repository.ProjectRepository, notifier Notifier) *SprintService {
	if sprintRepo == nil {
		panic("SprintRepository cannot be nil for SprintService")
	}
	if issueRepo == nil {
		panic("IssueRepository cannot be nil for SprintService")
	}
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for SprintService")
	}
	if notifier == nil {
		panic("Notifier cannot be nil for SprintService")
	}
	return &SprintService{
		sprintRepo:  sprintRepo,
		issueRepo:   issueRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
	}
}

// List returns sprints, optionally scoped to one project.
func (s *SprintService) List(ctx context.Context, projectUID string) ([]domain.Sprint, error) {
	var projectID *uint
	if projectUID != "" {
		project, err := s.projectRepo.FindByUID(ctx, projectUID)
		if err != nil {
			if errors.Is(err, repository.ErrProjectNotFound) {
				return nil, ErrProjectNotFound
			}
			logrus.WithError(err).Error("Failed to find project for sprint list")
			return nil, ErrInternalServer
		}
		projectID = &project.ID
	}
	sprints, err := s.sprintRepo.List(ctx, projectID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list sprints")
		return nil, ErrInternalServer
	}
	return sprints, nil
}

// Get looks a sprint up by uid.
func (s *SprintService) Get(ctx context.Context, uid string) (*domain.Sprint, error) {
	sprint, err := s.sprintRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			return nil, ErrSprintNotFound
		}
		logrus.WithError(err).Error("Failed to find sprint")
		return nil, ErrInternalServer
	}
	return sprint, nil
}

// CreateSprintInput carries the fields of a sprint creation request.
type CreateSprintInput struct {
	ProjectUID string
	Name       string
	Goal       string
	StartDate  time.Time
	EndDate    time.Time
}

// Create creates a planned sprint.
func (s *SprintService) Create(ctx context.Context, actor *domain.User, in CreateSprintInput) (*domain.Sprint, error) {
	if !canManagePlanning(actor) {
		return nil, ErrPermissionDenied
	}
	if in.Name == "" || in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidInput
	}
	project, err := s.projectRepo.FindByUID(ctx, in.ProjectUID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for sprint")
		return nil, ErrInternalServer
	}

	sprint := &domain.Sprint{
		UID:       domain.NewSprintUID(),
		ProjectID: project.ID,
		Name:      in.Name,
		Goal:      in.Goal,
		Status:    domain.SprintStatusPlanned,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	if err := s.sprintRepo.Save(ctx, sprint); err != nil {
		logrus.WithError(err).Error("Failed to save sprint")
		return nil, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"sprint_id": sprint.ID, "project_id": project.ID}).Info("Sprint created")
	return sprint, nil
}

// UpdateSprintInput carries mutable sprint fields; nil leaves a field as is.
type UpdateSprintInput struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Update applies a sprint change. Status moves only through Start/Complete.
func (s *SprintService) Update(ctx context.Context, actor *domain.User, uid string, in UpdateSprintInput) (*domain.Sprint, error) {
	if !canManagePlanning(actor) {
		return nil, ErrPermissionDenied
	}
	sprint, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		sprint.Name = *in.Name
	}
	if in.Goal != nil {
		sprint.Goal = *in.Goal
	}
	if in.StartDate != nil {
		sprint.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		sprint.EndDate = *in.EndDate
	}
	if sprint.EndDate.Before(sprint.StartDate) {
		return nil, ErrInvalidInput
	}

	if err := s.sprintRepo.Save(ctx, sprint); err != nil {
		logrus.WithError(err).WithField("sprint_id", sprint.ID).Error("Failed to save sprint update")
		return nil, ErrInternalServer
	}
	return sprint, nil
}

// Start activates a sprint. Any other active sprint of the project is
// completed first so at most one stays active. Project participants other than
// the actor are notified.
func (s *SprintService) Start(ctx context.Context, actor *domain.User, uid string) (*domain.Sprint, error) {
	if !canManagePlanning(actor) {
		return nil, ErrPermissionDenied
	}
	sprint, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sprint.Status == domain.SprintStatusActive {
		return sprint, nil
	}

	closed, err := s.sprintRepo.CompleteOtherActive(ctx, sprint.ProjectID, sprint.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to complete other active sprints")
		return nil, ErrInternalServer
	}
	if closed > 0 {
		logrus.WithFields(logrus.Fields{
			"project_id": sprint.ProjectID,
			"closed":     closed,
		}).Info("Completed previously active sprints")
	}

	sprint.Status = domain.SprintStatusActive
	if err := s.sprintRepo.Save(ctx, sprint); err != nil {
		logrus.WithError(err).WithField("sprint_id", sprint.ID).Error("Failed to activate sprint")
		return nil, ErrInternalServer
	}

	s.notifyParticipants(ctx, sprint, actor.ID,
		"Sprint started",
		fmt.Sprintf("Sprint \"%s\" has started", sprint.Name))
	logrus.WithField("sprint_id", sprint.ID).Info("Sprint started")
	return sprint, nil
}

// Complete closes a sprint. Unfinished issues move back to the backlog.
func (s *SprintService) Complete(ctx context.Context, actor *domain.User, uid string) (*domain.Sprint, error) {
	if !canManagePlanning(actor) {
		return nil, ErrPermissionDenied
	}
	sprint, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if sprint.Status == domain.SprintStatusCompleted {
		return sprint, nil
	}

	moved, err := s.issueRepo.DetachSprint(ctx, sprint.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to move unfinished issues to backlog")
		return nil, ErrInternalServer
	}

	sprint.Status = domain.SprintStatusCompleted
	if err := s.sprintRepo.Save(ctx, sprint); err != nil {
		logrus.WithError(err).WithField("sprint_id", sprint.ID).Error("Failed to complete sprint")
		return nil, ErrInternalServer
	}

	s.notifyParticipants(ctx, sprint, actor.ID,
		"Sprint completed",
		fmt.Sprintf("Sprint \"%s\" was completed, %d unfinished issues moved to backlog", sprint.Name, moved))
	logrus.WithFields(logrus.Fields{"sprint_id": sprint.ID, "moved": moved}).Info("Sprint completed")
	return sprint, nil
}

// Delete removes a sprint; its issues fall back to the backlog.
func (s *SprintService) Delete(ctx context.Context, actor *domain.User, uid string) error {
	if !canManagePlanning(actor) {
		return ErrPermissionDenied
	}
	sprint, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.sprintRepo.Delete(ctx, sprint.ID); err != nil {
		logrus.WithError(err).WithField("sprint_id", sprint.ID).Error("Failed to delete sprint")
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"sprint_id": sprint.ID, "actor_id": actor.ID}).Info("Sprint deleted")
	return nil
}

// CheckOverdue flags active sprints whose end date has passed and notifies
// project participants. Invoked periodically by the worker scheduler.
func (s *SprintService) CheckOverdue(ctx context.Context) error {
	sprints, err := s.sprintRepo.FindOverdueActive(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to find overdue sprints")
		return ErrInternalServer
	}
	for i := range sprints {
		sprint := &sprints[i]
		s.notifyParticipants(ctx, sprint, 0,
			"Sprint overdue",
			fmt.Sprintf("Sprint \"%s\" passed its end date and is still active", sprint.Name))
	}
	if len(sprints) > 0 {
		logrus.WithField("count", len(sprints)).Info("Overdue sprint notifications dispatched")
	}
	return nil
}

func (s *SprintService) notifyParticipants(ctx context.Context, sprint *domain.Sprint, actorID uint, title, message string) {
	participants, err := s.projectRepo.ParticipantIDs(ctx, sprint.ProjectID)
	if err != nil {
		logrus.WithError(err).WithField("project_id", sprint.ProjectID).Warn("Failed to resolve project participants")
		return
	}
	_ = s.notifier.Dispatch(ctx, NotificationInput{
		RecipientIDs: participants,
		ActorID:      actorID,
		Type:         domain.NotificationTypeSprint,
		Title:        title,
		Message:      message,
		Metadata:     map[string]string{"sprintUid": sprint.UID},
	})
}
