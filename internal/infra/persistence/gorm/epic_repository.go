package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormEpicRepository is the GORM implementation of EpicRepository.
type GormEpicRepository struct {
	db *gorm.DB
}

// NewGormEpicRepository creates a GormEpicRepository.
func NewGormEpicRepository(db *gorm.DB) *GormEpicRepository {
	if db == nil {
		panic("database connection cannot be nil for GormEpicRepository")
	}
	return &GormEpicRepository{db: db}
}

func (r *GormEpicRepository) FindByUID(ctx context.Context, uid string) (*domain.Epic, error) {
	var epic domain.Epic
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&epic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEpicNotFound
		}
		return nil, fmt.Errorf("gorm: find epic by uid '%s': %w", uid, err)
	}
	return &epic, nil
}

func (r *GormEpicRepository) List(ctx context.Context, projectID *uint) ([]domain.Epic, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var epics []domain.Epic
	if err := query.Find(&epics).Error; err != nil {
		return nil, fmt.Errorf("gorm: list epics: %w", err)
	}
	return epics, nil
}

func (r *GormEpicRepository) CountByProjectID(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Epic{}).
		Where("project_id = ?", projectID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count epics for project %d: %w", projectID, err)
	}
	return count, nil
}

func (r *GormEpicRepository) Save(ctx context.Context, epic *domain.Epic) error {
	err := r.db.WithContext(ctx).Save(epic).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save epic (id: %d, key: %s): %w", epic.ID, epic.Key, err)
	}
	return nil
}

// Delete removes the epic and detaches its issues in one transaction.
func (r *GormEpicRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Issue{}).Where("epic_id = ?", id).
			Update("epic_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Epic{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: delete epic %d: %w", id, err)
	}
	return nil
}
