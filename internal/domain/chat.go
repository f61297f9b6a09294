package domain

import (
	"fmt"
	"time"
)

// Chat room types.
const (
	ChatRoomTypeDM      = "dm"
	ChatRoomTypeChannel = "channel"
)

// Chat participant roles.
const (
	ChatRoleOwner  = "owner"
	ChatRoleMember = "member"
)

// ChatRoom is a direct-message conversation or a named channel. Rooms are
// ordered by last activity (UpdatedAt is touched on every message).
type ChatRoom struct {
	ID          uint      `gorm:"primaryKey"`
	UID         string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	RoomType    string    `gorm:"type:varchar(16);not null"`
	Name        string    `gorm:"type:varchar(255)"`
	IsPrivate   bool      `gorm:"not null;default:false"`
	DMKey       *string   `gorm:"type:varchar(128);uniqueIndex"` // canonical "dm:<lo>:<hi>", nil for channels
	ProjectID   *uint     `gorm:"index"`
	CreatedByID *uint     `gorm:"index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index"`
}

// DMKeyFor builds the canonical dedup key for a direct-message room between two
// users, independent of argument order.
func DMKeyFor(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}

// ChatParticipant is a (room, user) membership with a role and a read-position
// marker. A session may join a room's broadcast group only while this row exists.
type ChatParticipant struct {
	ID                uint       `gorm:"primaryKey"`
	RoomID            uint       `gorm:"uniqueIndex:idx_room_user;not null"`
	UserID            uint       `gorm:"uniqueIndex:idx_room_user;not null"`
	User              User       `gorm:"foreignKey:UserID"`
	Role              string     `gorm:"type:varchar(16);not null;default:member"`
	LastReadMessageID *uint      `gorm:"index"`
	LastReadAt        *time.Time
	JoinedAt          time.Time `gorm:"autoCreateTime"`
}

// ChatMessage is a persisted room message. Deletion is soft: content is blanked
// and the row kept so ordering and read markers stay consistent.
type ChatMessage struct {
	ID        uint       `gorm:"primaryKey"`
	UID       string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	RoomID    uint       `gorm:"index;not null"`
	SenderID  uint       `gorm:"index;not null"`
	Sender    User       `gorm:"foreignKey:SenderID"`
	Content   string     `gorm:"type:text;not null"`
	IsEdited  bool       `gorm:"not null;default:false"`
	EditedAt  *time.Time
	IsDeleted bool       `gorm:"not null;default:false"`
	DeletedAt *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
