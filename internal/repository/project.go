package repository

import (
	"context"

	"project-hub/internal/domain"
)

// ProjectRepository defines storage and retrieval of projects.
type ProjectRepository interface {
	// FindByUID looks a project up by external uid.
	// Returns ErrProjectNotFound when no such project exists.
	FindByUID(ctx context.Context, uid string) (*domain.Project, error)

	// FindByID looks a project up by numeric ID.
	FindByID(ctx context.Context, id uint) (*domain.Project, error)

	// KeyExists reports whether a project key is already taken.
	KeyExists(ctx context.Context, key string) (bool, error)

	// List returns all projects ordered by name, with the lead preloaded.
	List(ctx context.Context) ([]domain.Project, error)

	// Save creates or updates a project.
	Save(ctx context.Context, project *domain.Project) error

	// Delete removes a project and its dependents.
	Delete(ctx context.Context, id uint) error

	// ParticipantIDs returns the distinct user IDs involved in the project:
	// the lead plus every issue assignee and reporter.
	ParticipantIDs(ctx context.Context, projectID uint) ([]uint, error)
}

// LabelRepository defines storage of project labels.
type LabelRepository interface {
	// ListByProjectID returns the labels of one project.
	ListByProjectID(ctx context.Context, projectID uint) ([]domain.Label, error)

	// List returns all labels.
	List(ctx context.Context) ([]domain.Label, error)

	// FindByUIDs returns the labels matching the given uids.
	FindByUIDs(ctx context.Context, uids []string) ([]domain.Label, error)

	// Save creates or updates a label.
	Save(ctx context.Context, label *domain.Label) error
}
