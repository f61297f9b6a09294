package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"project-hub/internal/domain"
)

// MigrateDB brings the schema up to date for every domain model.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.User{},
		&domain.AuthToken{},
		&domain.Project{},
		&domain.Label{},
		&domain.Epic{},
		&domain.Sprint{},
		&domain.Issue{},
		&domain.IssueComment{},
		&domain.IssueLink{},
		&domain.Notification{},
		&domain.ChatRoom{},
		&domain.ChatParticipant{},
		&domain.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
