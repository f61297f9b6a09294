package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// canManageProjects reports whether the user may create, edit or delete
// projects.
func canManageProjects(u *domain.User) bool {
	return u != nil && u.Role == domain.RoleAdmin
}

// canManagePlanning reports whether the user may manage sprints and epics.
func canManagePlanning(u *domain.User) bool {
	return u != nil && (u.Role == domain.RoleAdmin || u.Role == domain.RoleProjectManager)
}

// ProjectService handles project and label management.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	labelRepo   repository.LabelRepository
}

// NewProjectService creates a ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, labelRepo repository.LabelRepository) *ProjectService {
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for ProjectService")
	}
	if labelRepo == nil {
		panic("LabelRepository cannot be nil for ProjectService")
	}
	return &ProjectService{projectRepo: projectRepo, labelRepo: labelRepo}
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list projects")
		return nil, ErrInternalServer
	}
	return projects, nil
}

// Get looks a project up by uid.
func (s *ProjectService) Get(ctx context.Context, uid string) (*domain.Project, error) {
	project, err := s.projectRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project")
		return nil, ErrInternalServer
	}
	return project, nil
}

// CreateProjectInput carries the fields of a project creation request.
type CreateProjectInput struct {
	Name        string
	Key         string
	Description string
	LeadID      uint
	Avatar      string
}

// Create creates a project. The key is upper-cased and must be unique.
func (s *ProjectService) Create(ctx context.Context, actor *domain.User, in CreateProjectInput) (*domain.Project, error) {
	if !canManageProjects(actor) {
		return nil, ErrPermissionDenied
	}
	key := strings.ToUpper(strings.TrimSpace(in.Key))
	if in.Name == "" || key == "" {
		return nil, ErrInvalidInput
	}

	taken, err := s.projectRepo.KeyExists(ctx, key)
	if err != nil {
		logrus.WithError(err).Error("Failed to check project key")
		return nil, ErrInternalServer
	}
	if taken {
		return nil, ErrDuplicateKey
	}

	leadID := in.LeadID
	if leadID == 0 {
		leadID = actor.ID
	}
	project := &domain.Project{
		UID:         domain.NewProjectUID(),
		Name:        in.Name,
		Key:         key,
		Description: in.Description,
		LeadID:      leadID,
		Avatar:      in.Avatar,
	}
	if err := s.projectRepo.Save(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrDuplicateKey
		}
		logrus.WithError(err).Error("Failed to save project")
		return nil, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"project_id": project.ID, "key": key}).Info("Project created")
	return project, nil
}

// UpdateProjectInput carries mutable project fields; nil leaves a field as is.
// The key is immutable because issue keys embed it.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	LeadID      *uint
	Avatar      *string
}

// Update applies a project change.
func (s *ProjectService) Update(ctx context.Context, actor *domain.User, uid string, in UpdateProjectInput) (*domain.Project, error) {
	if !canManageProjects(actor) {
		return nil, ErrPermissionDenied
	}
	project, err := s.projectRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for update")
		return nil, ErrInternalServer
	}

	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.LeadID != nil {
		project.LeadID = *in.LeadID
	}
	if in.Avatar != nil {
		project.Avatar = *in.Avatar
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).Error("Failed to save project update")
		return nil, ErrInternalServer
	}
	return project, nil
}

// Delete removes a project with its issues, sprints, epics and labels.
func (s *ProjectService) Delete(ctx context.Context, actor *domain.User, uid string) error {
	if !canManageProjects(actor) {
		return ErrPermissionDenied
	}
	project, err := s.projectRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for delete")
		return ErrInternalServer
	}
	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).Error("Failed to delete project")
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"project_id": project.ID, "actor_id": actor.ID}).Info("Project deleted")
	return nil
}

// ListLabels returns labels, optionally scoped to one project.
func (s *ProjectService) ListLabels(ctx context.Context, projectUID string) ([]domain.Label, error) {
	if projectUID == "" {
		labels, err := s.labelRepo.List(ctx)
		if err != nil {
			logrus.WithError(err).Error("Failed to list labels")
			return nil, ErrInternalServer
		}
		return labels, nil
	}
	project, err := s.Get(ctx, projectUID)
	if err != nil {
		return nil, err
	}
	labels, err := s.labelRepo.ListByProjectID(ctx, project.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list project labels")
		return nil, ErrInternalServer
	}
	return labels, nil
}

// CreateLabel adds a label to a project. Names are unique per project.
func (s *ProjectService) CreateLabel(ctx context.Context, actor *domain.User, projectUID, name, color string) (*domain.Label, error) {
	if actor == nil || actor.Role == domain.RoleViewer {
		return nil, ErrPermissionDenied
	}
	if name == "" {
		return nil, ErrInvalidInput
	}
	project, err := s.Get(ctx, projectUID)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = "gray"
	}
	label := &domain.Label{
		UID:       domain.NewLabelUID(),
		ProjectID: project.ID,
		Name:      name,
		Color:     color,
	}
	if err := s.labelRepo.Save(ctx, label); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrDuplicateKey
		}
		logrus.WithError(err).Error("Failed to save label")
		return nil, ErrInternalServer
	}
	return label, nil
}
