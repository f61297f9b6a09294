package domain

import "time"

// Issue types.
const (
	IssueTypeStory   = "story"
	IssueTypeBug     = "bug"
	IssueTypeTask    = "task"
	IssueTypeEpic    = "epic"
	IssueTypeSubtask = "subtask"
	IssueTypeSpike   = "spike"
)

// Issue workflow statuses.
const (
	IssueStatusTodo       = "todo"
	IssueStatusInProgress = "in_progress"
	IssueStatusInReview   = "in_review"
	IssueStatusDone       = "done"
)

// Issue priorities.
const (
	PriorityHighest = "highest"
	PriorityHigh    = "high"
	PriorityMedium  = "medium"
	PriorityLow     = "low"
	PriorityLowest  = "lowest"
)

// IsValidIssueStatus reports whether s is one of the workflow statuses.
func IsValidIssueStatus(s string) bool {
	switch s {
	case IssueStatusTodo, IssueStatusInProgress, IssueStatusInReview, IssueStatusDone:
		return true
	}
	return false
}

// Issue is the central work item of a project.
type Issue struct {
	ID             uint       `gorm:"primaryKey"`
	UID            string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	ProjectID      uint       `gorm:"index;not null"`
	Key            string     `gorm:"type:varchar(32);uniqueIndex;not null"` // "<PROJKEY>-<n>", n starts at 101
	Title          string     `gorm:"type:varchar(255);not null"`
	Description    string     `gorm:"type:text"`
	IssueType      string     `gorm:"type:varchar(16);not null"`
	Status         string     `gorm:"type:varchar(16);not null;default:todo"`
	Priority       string     `gorm:"type:varchar(16);not null;default:medium"`
	AssigneeID     *uint      `gorm:"index"`
	Assignee       *User      `gorm:"foreignKey:AssigneeID"`
	ReporterID     uint       `gorm:"index;not null"`
	Reporter       User       `gorm:"foreignKey:ReporterID"`
	SprintID       *uint      `gorm:"index"`
	EpicID         *uint      `gorm:"index"`
	ParentID       *uint      `gorm:"index"`
	DueDate        *time.Time `gorm:"type:date"`
	StoryPoints    *int
	EstimatedHours *float64
	LoggedHours    float64   `gorm:"not null;default:0"`
	Labels         []Label   `gorm:"many2many:issue_labels"`
	Watchers       []User    `gorm:"many2many:issue_watchers"`
	Comments       []IssueComment
	Links          []IssueLink
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;index"`
}

// IssueComment is a comment on an issue. Mentions in the content produce
// notifications but are not stored structurally.
type IssueComment struct {
	ID        uint       `gorm:"primaryKey"`
	UID       string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	IssueID   uint       `gorm:"index;not null"`
	AuthorID  uint       `gorm:"index;not null"`
	Author    User       `gorm:"foreignKey:AuthorID"`
	Content   string     `gorm:"type:text;not null"`
	IsEdited  bool       `gorm:"not null;default:false"`
	EditedAt  *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Issue link types.
const (
	LinkTypeBlocks         = "blocks"
	LinkTypeIsBlockedBy    = "is_blocked_by"
	LinkTypeRelatesTo      = "relates_to"
	LinkTypeDuplicates     = "duplicates"
	LinkTypeIsDuplicatedBy = "is_duplicated_by"
)

// IsValidLinkType reports whether t is a known issue link type.
func IsValidLinkType(t string) bool {
	switch t {
	case LinkTypeBlocks, LinkTypeIsBlockedBy, LinkTypeRelatesTo, LinkTypeDuplicates, LinkTypeIsDuplicatedBy:
		return true
	}
	return false
}

// IssueLink is a typed relation between two issues, unique per (issue, type, target).
type IssueLink struct {
	ID            uint   `gorm:"primaryKey"`
	UID           string `gorm:"type:varchar(32);uniqueIndex;not null"`
	IssueID       uint   `gorm:"uniqueIndex:idx_issue_link;not null"`
	LinkType      string `gorm:"type:varchar(32);uniqueIndex:idx_issue_link;not null"`
	TargetIssueID uint   `gorm:"uniqueIndex:idx_issue_link;not null"`
	TargetIssue   *Issue `gorm:"foreignKey:TargetIssueID"`
}
