package domain

import "time"

// Epic statuses.
const (
	EpicStatusTodo       = "todo"
	EpicStatusInProgress = "in_progress"
	EpicStatusDone       = "done"
)

// Epic groups issues under a larger body of work within a project.
type Epic struct {
	ID        uint      `gorm:"primaryKey"`
	UID       string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	ProjectID uint      `gorm:"index;not null"`
	Key       string    `gorm:"type:varchar(32);uniqueIndex;not null"` // "<PROJKEY>-E<n>"
	Name      string    `gorm:"type:varchar(255);not null"`
	Summary   string    `gorm:"type:text"`
	Color     string    `gorm:"type:varchar(16);not null;default:#6554C0"`
	Status    string    `gorm:"type:varchar(16);not null;default:todo"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
