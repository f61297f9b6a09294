package service

import "errors"

// Business errors returned to the handler layer. Handlers map these onto HTTP
// statuses; anything else is treated as an internal error.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: email already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrUserNotFound         = errors.New("user not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrEpicNotFound         = errors.New("epic not found")
	ErrSprintNotFound       = errors.New("sprint not found")
	ErrIssueNotFound        = errors.New("issue not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrRoomNotFound         = errors.New("chat room not found")
	ErrMessageNotFound      = errors.New("chat message not found")
	ErrNotParticipant       = errors.New("user is not a participant of the room")
	ErrEmptyMessage         = errors.New("message content is empty")
	ErrDuplicateKey         = errors.New("key already in use")
	ErrInternalServer       = errors.New("internal server error")
)
