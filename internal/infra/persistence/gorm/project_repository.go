package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormProjectRepository is the GORM implementation of ProjectRepository.
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a GormProjectRepository.
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	if db == nil {
		panic("database connection cannot be nil for GormProjectRepository")
	}
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) FindByUID(ctx context.Context, uid string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Preload("Lead").Where("uid = ?", uid).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProjectNotFound
		}
		return nil, fmt.Errorf("gorm: find project by uid '%s': %w", uid, err)
	}
	return &project, nil
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id uint) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Preload("Lead").First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProjectNotFound
		}
		return nil, fmt.Errorf("gorm: find project by id %d: %w", id, err)
	}
	return &project, nil
}

func (r *GormProjectRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Where("`key` = ?", key).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check project key '%s': %w", key, err)
	}
	return count > 0, nil
}

func (r *GormProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Preload("Lead").Order("name").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list projects: %w", err)
	}
	return projects, nil
}

func (r *GormProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	err := r.db.WithContext(ctx).Save(project).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save project (id: %d, key: %s): %w", project.ID, project.Key, err)
	}
	return nil
}

// Delete removes the project and everything hanging off it. Done in one
// transaction so a partial failure leaves no orphans.
func (r *GormProjectRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var issueIDs []uint
		if err := tx.Model(&domain.Issue{}).Where("project_id = ?", id).Pluck("id", &issueIDs).Error; err != nil {
			return err
		}
		if len(issueIDs) > 0 {
			if err := tx.Where("issue_id IN ?", issueIDs).Delete(&domain.IssueComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("issue_id IN ? OR target_issue_id IN ?", issueIDs, issueIDs).Delete(&domain.IssueLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", issueIDs).Delete(&domain.Issue{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Sprint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Epic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&domain.Label{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Project{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: delete project %d: %w", id, err)
	}
	return nil
}

// ParticipantIDs collects the distinct users involved in a project: the lead
// plus every issue assignee and reporter.
func (r *GormProjectRepository) ParticipantIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var leadID uint
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).Pluck("lead_id", &leadID).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: project %d lead: %w", projectID, err)
	}

	var assignees []uint
	err = r.db.WithContext(ctx).Model(&domain.Issue{}).
		Where("project_id = ? AND assignee_id IS NOT NULL", projectID).
		Distinct().Pluck("assignee_id", &assignees).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: project %d assignees: %w", projectID, err)
	}

	var reporters []uint
	err = r.db.WithContext(ctx).Model(&domain.Issue{}).
		Where("project_id = ?", projectID).
		Distinct().Pluck("reporter_id", &reporters).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: project %d reporters: %w", projectID, err)
	}

	seen := make(map[uint]bool, 1+len(assignees)+len(reporters))
	ids := make([]uint, 0, len(seen))
	for _, id := range append(append([]uint{leadID}, assignees...), reporters...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// GormLabelRepository is the GORM implementation of LabelRepository.
type GormLabelRepository struct {
	db *gorm.DB
}

// NewGormLabelRepository creates a GormLabelRepository.
func NewGormLabelRepository(db *gorm.DB) *GormLabelRepository {
	if db == nil {
		panic("database connection cannot be nil for GormLabelRepository")
	}
	return &GormLabelRepository{db: db}
}

func (r *GormLabelRepository) ListByProjectID(ctx context.Context, projectID uint) ([]domain.Label, error) {
	var labels []domain.Label
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("name").Find(&labels).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list labels for project %d: %w", projectID, err)
	}
	return labels, nil
}

func (r *GormLabelRepository) List(ctx context.Context) ([]domain.Label, error) {
	var labels []domain.Label
	err := r.db.WithContext(ctx).Order("name").Find(&labels).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list labels: %w", err)
	}
	return labels, nil
}

func (r *GormLabelRepository) FindByUIDs(ctx context.Context, uids []string) ([]domain.Label, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	var labels []domain.Label
	err := r.db.WithContext(ctx).Where("uid IN ?", uids).Find(&labels).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find labels by uids: %w", err)
	}
	return labels, nil
}

func (r *GormLabelRepository) Save(ctx context.Context, label *domain.Label) error {
	err := r.db.WithContext(ctx).Save(label).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save label (id: %d, name: %s): %w", label.ID, label.Name, err)
	}
	return nil
}
