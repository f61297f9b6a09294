package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// EpicService handles epic management.
type EpicService struct {
	epicRepo    repository.EpicRepository
	projectRepo repository.ProjectRepository
}

// NewEpicService creates an EpicService.
func NewEpicService(epicRepo repository.EpicRepository, projectRepo repository.ProjectRepository) *EpicService {
	if epicRepo == nil {
		panic("EpicRepository cannot be nil for EpicService")
	}
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for EpicService")
	}
	return &EpicService{epicRepo: epicRepo, projectRepo: projectRepo}
}

// List returns epics, optionally scoped to one project.
func (s *EpicService) List(ctx context.Context, projectUID string) ([]domain.Epic, error) {
	var projectID *uint
	if projectUID != "" {
		project, err := s.projectRepo.FindByUID(ctx, projectUID)
		if err != nil {
			if errors.Is(err, repository.ErrProjectNotFound) {
				return nil, ErrProjectNotFound
			}
			logrus.WithError(err).Error("Failed to find project for epic list")
			return nil, ErrInternalServer
		}
		projectID = &project.ID
	}
	epics, err := s.epicRepo.List(ctx, projectID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list epics")
		return nil, ErrInternalServer
	}
	return epics, nil
}

// Get looks an epic up by uid.
func (s *EpicService) Get(ctx context.Context, uid string) (*domain.Epic, error) {
	epic, err := s.epicRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrEpicNotFound) {
			return nil, ErrEpicNotFound
		}
		logrus.WithError(err).Error("Failed to find epic")
		return nil, ErrInternalServer
	}
	return epic, nil
}

// CreateEpicInput carries the fields of an epic creation request.
type CreateEpicInput struct {
	ProjectUID string
	Name       string
	Summary    string
	Color      string
}

// Create creates an epic. The key is allocated as "<PROJKEY>-E<n>" from the
// project's epic count.
func (s *EpicService) Create(ctx context.Context, actor *domain.User, in CreateEpicInput) (*domain.Epic, error) {
	if !canManagePlanning(actor) {
		return nil, ErrPermissionDenied
	}
	if in.Name == "" {
		return nil, ErrInvalidInput
	}
	project, err := s.projectRepo.FindByUID(ctx, in.ProjectUID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for epic")
		return nil, ErrInternalServer
	}

	count, err := s.epicRepo.CountByProjectID(ctx, project.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to count epics for key allocation")
		return nil, ErrInternalServer
	}

	color := in.Color
	if color == "" {
		color = "#6554C0"
	}
	epic := &domain.Epic{
		UID:       domain.NewEpicUID(),
		ProjectID: project.ID,
		Key:       fmt.Sprintf("%s-E%d", project.Key, count+1),
		Name:      in.Name,
		Summary:   in.Summary,
		Color:     color,
		Status:    domain.EpicStatusTodo,
	}
	if err := s.epicRepo.Save(ctx, epic); err != nil {
		logrus.WithError(err).Error("Failed to save epic")
		return nil, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"epic_id": epic.ID, "key": epic.Key}).Info("Epic created")
	return epic, nil
}

// UpdateEpicInput carries mutable epic fields; nil leaves a field as is.
type UpdateEpicInput struct {
	Name    *string
	Summary *string
	Color   *string
	Status  *string
}

// Update applies an epic change.
func (s *EpicService) Update(ctx context.Context, actor *domain.User, uid string, in UpdateEpicInput) (*domain.Epic, error) {
	if !canManagePlanning(actor) {
		return nil, ErrPermissionDenied
	}
	epic, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		epic.Name = *in.Name
	}
	if in.Summary != nil {
		epic.Summary = *in.Summary
	}
	if in.Color != nil {
		epic.Color = *in.Color
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.EpicStatusTodo, domain.EpicStatusInProgress, domain.EpicStatusDone:
			epic.Status = *in.Status
		default:
			return nil, ErrInvalidInput
		}
	}

	if err := s.epicRepo.Save(ctx, epic); err != nil {
		logrus.WithError(err).WithField("epic_id", epic.ID).Error("Failed to save epic update")
		return nil, ErrInternalServer
	}
	return epic, nil
}

// Delete removes an epic; its issues fall back to having no epic.
func (s *EpicService) Delete(ctx context.Context, actor *domain.User, uid string) error {
	if !canManagePlanning(actor) {
		return ErrPermissionDenied
	}
	epic, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.epicRepo.Delete(ctx, epic.ID); err != nil {
		logrus.WithError(err).WithField("epic_id", epic.ID).Error("Failed to delete epic")
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"epic_id": epic.ID, "actor_id": actor.ID}).Info("Epic deleted")
	return nil
}
