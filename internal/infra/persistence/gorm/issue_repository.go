package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// GormIssueRepository is the GORM implementation of IssueRepository.
type GormIssueRepository struct {
	db *gorm.DB
}

// NewGormIssueRepository creates a GormIssueRepository.
func NewGormIssueRepository(db *gorm.DB) *GormIssueRepository {
	if db == nil {
		panic("database connection cannot be nil for GormIssueRepository")
	}
	return &GormIssueRepository{db: db}
}

// FindByUID loads the issue with its full detail graph.
func (r *GormIssueRepository) FindByUID(ctx context.Context, uid string) (*domain.Issue, error) {
	var issue domain.Issue
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Reporter").
		Preload("Labels").
		Preload("Watchers").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("issue_comments.created_at")
		}).
		Preload("Comments.Author").
		Preload("Links").
		Preload("Links.TargetIssue").
		Where("uid = ?", uid).First(&issue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIssueNotFound
		}
		return nil, fmt.Errorf("gorm: find issue by uid '%s': %w", uid, err)
	}
	return &issue, nil
}

func (r *GormIssueRepository) FindByKey(ctx context.Context, key string) (*domain.Issue, error) {
	var issue domain.Issue
	err := r.db.WithContext(ctx).Preload("Assignee").Preload("Reporter").
		Where("`key` = ?", key).First(&issue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIssueNotFound
		}
		return nil, fmt.Errorf("gorm: find issue by key '%s': %w", key, err)
	}
	return &issue, nil
}

func (r *GormIssueRepository) List(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	query := r.db.WithContext(ctx).Model(&domain.Issue{}).
		Preload("Assignee").Preload("Reporter").Preload("Labels").
		Order("updated_at DESC")

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.SprintID != nil {
		query = query.Where("sprint_id = ?", *filter.SprintID)
	}
	if filter.EpicID != nil {
		query = query.Where("epic_id = ?", *filter.EpicID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.IssueType != "" {
		query = query.Where("issue_type = ?", filter.IssueType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR `key` LIKE ?", pattern, pattern)
	}
	if !filter.IncludeSubtasks {
		query = query.Where("issue_type <> ?", domain.IssueTypeSubtask)
	}

	var issues []domain.Issue
	if err := query.Find(&issues).Error; err != nil {
		return nil, fmt.Errorf("gorm: list issues: %w", err)
	}
	return issues, nil
}

func (r *GormIssueRepository) ListBySprintID(ctx context.Context, sprintID uint) ([]domain.Issue, error) {
	var issues []domain.Issue
	err := r.db.WithContext(ctx).Preload("Assignee").
		Where("sprint_id = ?", sprintID).Find(&issues).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list issues for sprint %d: %w", sprintID, err)
	}
	return issues, nil
}

func (r *GormIssueRepository) CountByProjectID(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Issue{}).
		Where("project_id = ?", projectID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count issues for project %d: %w", projectID, err)
	}
	return count, nil
}

// Save persists the issue row itself. Associations (labels, watchers) are
// managed through their dedicated methods, so they are skipped here.
func (r *GormIssueRepository) Save(ctx context.Context, issue *domain.Issue) error {
	err := r.db.WithContext(ctx).Omit("Labels", "Watchers", "Comments", "Links").Save(issue).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save issue (id: %d, key: %s): %w", issue.ID, issue.Key, err)
	}
	return nil
}

func (r *GormIssueRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ?", id).Delete(&domain.IssueComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("issue_id = ? OR target_issue_id = ?", id, id).Delete(&domain.IssueLink{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Issue{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Issue{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: delete issue %d: %w", id, err)
	}
	return nil
}

func (r *GormIssueRepository) SetLabels(ctx context.Context, issue *domain.Issue, labels []domain.Label) error {
	err := r.db.WithContext(ctx).Model(issue).Association("Labels").Replace(labels)
	if err != nil {
		return fmt.Errorf("gorm: set labels for issue %d: %w", issue.ID, err)
	}
	return nil
}

func (r *GormIssueRepository) AddWatcher(ctx context.Context, issue *domain.Issue, user *domain.User) error {
	err := r.db.WithContext(ctx).Model(issue).Association("Watchers").Append(user)
	if err != nil {
		return fmt.Errorf("gorm: add watcher %d to issue %d: %w", user.ID, issue.ID, err)
	}
	return nil
}

func (r *GormIssueRepository) RemoveWatcher(ctx context.Context, issue *domain.Issue, user *domain.User) error {
	err := r.db.WithContext(ctx).Model(issue).Association("Watchers").Delete(user)
	if err != nil {
		return fmt.Errorf("gorm: remove watcher %d from issue %d: %w", user.ID, issue.ID, err)
	}
	return nil
}

func (r *GormIssueRepository) IsWatching(ctx context.Context, issueID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("issue_watchers").
		Where("issue_id = ? AND user_id = ?", issueID, userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check watcher %d on issue %d: %w", userID, issueID, err)
	}
	return count > 0, nil
}

// DetachSprint moves every unfinished issue of the sprint back to the backlog
// in one UPDATE.
func (r *GormIssueRepository) DetachSprint(ctx context.Context, sprintID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Issue{}).
		Where("sprint_id = ? AND status <> ?", sprintID, domain.IssueStatusDone).
		Update("sprint_id", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: detach issues from sprint %d: %w", sprintID, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormIssueRepository) SaveComment(ctx context.Context, comment *domain.IssueComment) error {
	err := r.db.WithContext(ctx).Save(comment).Error
	if err != nil {
		return fmt.Errorf("gorm: save comment (id: %d, issue: %d): %w", comment.ID, comment.IssueID, err)
	}
	return nil
}

// SaveLink inserts the link; the (issue, type, target) unique index turns a
// replay into a silent no-op.
func (r *GormIssueRepository) SaveLink(ctx context.Context, link *domain.IssueLink) error {
	err := r.db.WithContext(ctx).Create(link).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return nil
		}
		return fmt.Errorf("gorm: save link (issue: %d, target: %d): %w", link.IssueID, link.TargetIssueID, err)
	}
	return nil
}

func (r *GormIssueRepository) DeleteLink(ctx context.Context, issueID uint, linkUID string) error {
	result := r.db.WithContext(ctx).
		Where("issue_id = ? AND uid = ?", issueID, linkUID).
		Delete(&domain.IssueLink{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete link '%s' from issue %d: %w", linkUID, issueID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
