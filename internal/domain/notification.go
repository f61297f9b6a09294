package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Notification types.
const (
	NotificationTypeInfo       = "info"
	NotificationTypeAssignment = "assignment"
	NotificationTypeComment    = "comment"
	NotificationTypeStatus     = "status_change"
	NotificationTypeSprint     = "sprint"
	NotificationTypeMention    = "mention"
	NotificationTypeSystem     = "system"
)

// Notification is a persisted in-app notification. Only a lightweight change
// signal travels over the WebSocket channel; clients re-fetch rows via the API.
type Notification struct {
	ID        uint      `gorm:"primaryKey"`
	UID       string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Message   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"column:notification_type;type:varchar(32);not null;default:info"`
	IsRead    bool      `gorm:"not null;default:false"`
	ActionURL string    `gorm:"type:varchar(255)"`
	Metadata  string    `gorm:"type:text"` // JSON object, see ParseMetadata/SetMetadata
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// ParseMetadata decodes the Metadata JSON column. An empty column yields an
// empty map, not an error.
func (n *Notification) ParseMetadata() (map[string]string, error) {
	meta := map[string]string{}
	if n.Metadata == "" || n.Metadata == "null" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(n.Metadata), &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification metadata: %w", err)
	}
	return meta, nil
}

// SetMetadata encodes meta into the Metadata column.
func (n *Notification) SetMetadata(meta map[string]string) error {
	if len(meta) == 0 {
		n.Metadata = "{}"
		return nil
	}
	bytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal notification metadata: %w", err)
	}
	n.Metadata = string(bytes)
	return nil
}
