package domain

import (
	"strings"
	"time"
)

// User roles, in decreasing order of privilege.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDeveloper      = "developer"
	RoleViewer         = "viewer"
)

// User represents an account. Email doubles as the login name.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	UID          string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null"`
	FirstName    string    `gorm:"type:varchar(150)"`
	LastName     string    `gorm:"type:varchar(150)"`
	PasswordHash string    `gorm:"type:text;not null"`
	Role         string    `gorm:"type:varchar(32);not null;default:developer"`
	Avatar       string    `gorm:"type:varchar(64)"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// FullName returns "First Last", falling back to the email when both are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Initials returns up to two upper-case initials for avatar placeholders.
func (u *User) Initials() string {
	parts := strings.Fields(u.FirstName + " " + u.LastName)
	if len(parts) == 0 {
		fallback := u.Email
		if len(fallback) >= 2 {
			fallback = fallback[:2]
		}
		return strings.ToUpper(fallback)
	}
	initials := ""
	for _, p := range parts {
		initials += strings.ToUpper(p[:1])
		if len(initials) == 2 {
			break
		}
	}
	return initials
}

// EmailLocalPart returns the part of the email before '@', used for mention matching.
func (u *User) EmailLocalPart() string {
	if idx := strings.IndexByte(u.Email, '@'); idx > 0 {
		return u.Email[:idx]
	}
	return u.Email
}

// AuthToken is an opaque stored credential bound to a user. Created at login,
// deleted at logout; an unknown key resolves to the anonymous identity.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
