package repository

import (
	"context"

	"project-hub/internal/domain"
)

// IssueFilter narrows down issue listings. Zero values mean "no filter".
type IssueFilter struct {
	ProjectID       *uint
	SprintID        *uint
	EpicID          *uint
	AssigneeID      *uint
	IssueType       string
	Status          string
	Search          string // matched against title and key, case-insensitively
	IncludeSubtasks bool
}

// IssueRepository defines storage and retrieval of issues and their dependents.
type IssueRepository interface {
	// FindByUID looks an issue up by external uid, preloading assignee,
	// reporter, labels, watchers, comments and links.
	FindByUID(ctx context.Context, uid string) (*domain.Issue, error)

	// FindByKey looks an issue up by its project-scoped key (e.g. "PHX-104").
	FindByKey(ctx context.Context, key string) (*domain.Issue, error)

	// List returns issues matching the filter, most recently updated first.
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)

	// ListBySprintID returns the issues of one sprint.
	ListBySprintID(ctx context.Context, sprintID uint) ([]domain.Issue, error)

	// CountByProjectID returns the number of issues in a project (key allocation).
	CountByProjectID(ctx context.Context, projectID uint) (int64, error)

	// Save creates or updates an issue.
	Save(ctx context.Context, issue *domain.Issue) error

	// Delete removes an issue.
	Delete(ctx context.Context, id uint) error

	// SetLabels replaces the issue's label set.
	SetLabels(ctx context.Context, issue *domain.Issue, labels []domain.Label) error

	// AddWatcher / RemoveWatcher mutate the watcher set; adding an existing
	// watcher is a no-op.
	AddWatcher(ctx context.Context, issue *domain.Issue, user *domain.User) error
	RemoveWatcher(ctx context.Context, issue *domain.Issue, user *domain.User) error

	// IsWatching reports whether the user watches the issue.
	IsWatching(ctx context.Context, issueID, userID uint) (bool, error)

	// DetachSprint clears the sprint of every non-done issue in the sprint
	// (moving them back to the backlog). Returns the number of issues moved.
	DetachSprint(ctx context.Context, sprintID uint) (int64, error)

	// SaveComment persists a comment.
	SaveComment(ctx context.Context, comment *domain.IssueComment) error

	// SaveLink persists a link if the (issue, type, target) triple is new;
	// an existing triple is a no-op.
	SaveLink(ctx context.Context, link *domain.IssueLink) error

	// DeleteLink removes a link by uid, scoped to the issue.
	DeleteLink(ctx context.Context, issueID uint, linkUID string) error
}
