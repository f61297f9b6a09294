package repository

import (
	"context"

	"project-hub/internal/domain"
)

// EpicRepository defines storage and retrieval of epics.
type EpicRepository interface {
	// FindByUID looks an epic up by external uid.
	FindByUID(ctx context.Context, uid string) (*domain.Epic, error)

	// List returns epics newest first, optionally filtered by project.
	List(ctx context.Context, projectID *uint) ([]domain.Epic, error)

	// CountByProjectID returns the number of epics in a project (key allocation).
	CountByProjectID(ctx context.Context, projectID uint) (int64, error)

	// Save creates or updates an epic.
	Save(ctx context.Context, epic *domain.Epic) error

	// Delete removes an epic and detaches its issues.
	Delete(ctx context.Context, id uint) error
}
