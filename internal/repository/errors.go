package repository

import "errors"

// Common repository errors. Implementations map driver-specific failures onto
// these so services never import gorm.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry indicates a write violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Resource-specific aliases, kept distinct so call sites read naturally.
var (
	ErrUserNotFound         = ErrNotFound
	ErrTokenNotFound        = ErrNotFound
	ErrProjectNotFound      = ErrNotFound
	ErrEpicNotFound         = ErrNotFound
	ErrSprintNotFound       = ErrNotFound
	ErrIssueNotFound        = ErrNotFound
	ErrNotificationNotFound = ErrNotFound
	ErrRoomNotFound         = ErrNotFound
	ErrParticipantNotFound  = ErrNotFound
	ErrMessageNotFound      = ErrNotFound
)
