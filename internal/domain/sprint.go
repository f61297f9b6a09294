package domain

import "time"

// Sprint statuses. At most one sprint per project is active; starting a sprint
// completes any other active one as a side effect.
const (
	SprintStatusPlanned   = "planned"
	SprintStatusActive    = "active"
	SprintStatusCompleted = "completed"
)

// Sprint is a time-boxed iteration of a project.
type Sprint struct {
	ID        uint      `gorm:"primaryKey"`
	UID       string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	ProjectID uint      `gorm:"index;not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Goal      string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(16);not null;default:planned"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
