package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormSprintRepository is the GORM implementation of SprintRepository.
type GormSprintRepository struct {
	db *gorm.DB
}

// NewGormSprintRepository creates a GormSprintRepository.
func NewGormSprintRepository(db *gorm.DB) *GormSprintRepository {
	if db == nil {
		panic("database connection cannot be nil for GormSprintRepository")
	}
	return &GormSprintRepository{db: db}
}

func (r *GormSprintRepository) FindByUID(ctx context.Context, uid string) (*domain.Sprint, error) {
	var sprint domain.Sprint
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&sprint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSprintNotFound
		}
		return nil, fmt.Errorf("gorm: find sprint by uid '%s': %w", uid, err)
	}
	return &sprint, nil
}

func (r *GormSprintRepository) List(ctx context.Context, projectID *uint) ([]domain.Sprint, error) {
	query := r.db.WithContext(ctx).Order("start_date")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var sprints []domain.Sprint
	if err := query.Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("gorm: list sprints: %w", err)
	}
	return sprints, nil
}

func (r *GormSprintRepository) FindActiveByProjectID(ctx context.Context, projectID uint) (*domain.Sprint, error) {
	var sprint domain.Sprint
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, domain.SprintStatusActive).
		First(&sprint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSprintNotFound
		}
		return nil, fmt.Errorf("gorm: find active sprint for project %d: %w", projectID, err)
	}
	return &sprint, nil
}

// CompleteOtherActive enforces the one-active-sprint rule: every other active
// sprint of the project is closed in a single UPDATE.
func (r *GormSprintRepository) CompleteOtherActive(ctx context.Context, projectID, exceptID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Sprint{}).
		Where("project_id = ? AND status = ? AND id <> ?", projectID, domain.SprintStatusActive, exceptID).
		Update("status", domain.SprintStatusCompleted)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: complete other active sprints for project %d: %w", projectID, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormSprintRepository) FindOverdueActive(ctx context.Context) ([]domain.Sprint, error) {
	var sprints []domain.Sprint
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", domain.SprintStatusActive, time.Now()).
		Find(&sprints).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find overdue active sprints: %w", err)
	}
	return sprints, nil
}

func (r *GormSprintRepository) Save(ctx context.Context, sprint *domain.Sprint) error {
	err := r.db.WithContext(ctx).Save(sprint).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save sprint (id: %d, name: %s): %w", sprint.ID, sprint.Name, err)
	}
	return nil
}

// Delete removes the sprint and detaches its issues in one transaction.
func (r *GormSprintRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Issue{}).Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Sprint{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: delete sprint %d: %w", id, err)
	}
	return nil
}
