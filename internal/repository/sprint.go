package repository

import (
	"context"

	"project-hub/internal/domain"
)

// SprintRepository defines storage and retrieval of sprints.
type SprintRepository interface {
	// FindByUID looks a sprint up by external uid.
	FindByUID(ctx context.Context, uid string) (*domain.Sprint, error)

	// List returns sprints ordered by start date, optionally filtered by project.
	List(ctx context.Context, projectID *uint) ([]domain.Sprint, error)

	// FindActiveByProjectID returns the project's active sprint, or
	// ErrSprintNotFound when none is active.
	FindActiveByProjectID(ctx context.Context, projectID uint) (*domain.Sprint, error)

	// CompleteOtherActive marks every active sprint of the project except the
	// given one as completed. Returns the number of sprints updated.
	CompleteOtherActive(ctx context.Context, projectID, exceptID uint) (int64, error)

	// FindOverdueActive returns active sprints whose end date lies before now.
	FindOverdueActive(ctx context.Context) ([]domain.Sprint, error)

	// Save creates or updates a sprint.
	Save(ctx context.Context, sprint *domain.Sprint) error

	// Delete removes a sprint and detaches its issues.
	Delete(ctx context.Context, id uint) error
}
