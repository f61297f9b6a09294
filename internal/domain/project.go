package domain

import "time"

// Project is the top-level container for issues, sprints and epics.
type Project struct {
	ID          uint      `gorm:"primaryKey"`
	UID         string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Key         string    `gorm:"type:varchar(16);uniqueIndex;not null"` // e.g. "PHX", used as issue key prefix
	Description string    `gorm:"type:text"`
	LeadID      uint      `gorm:"index;not null"`
	Lead        User      `gorm:"foreignKey:LeadID"`
	Avatar      string    `gorm:"type:varchar(64)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Label is a project-scoped tag attachable to issues.
type Label struct {
	ID        uint   `gorm:"primaryKey"`
	UID       string `gorm:"type:varchar(32);uniqueIndex;not null"`
	ProjectID uint   `gorm:"uniqueIndex:idx_project_label;not null"`
	Name      string `gorm:"type:varchar(64);uniqueIndex:idx_project_label;not null"`
	Color     string `gorm:"type:varchar(32);not null;default:gray"`
}
