// Package tasks defines the asynq task types and their payload codecs.
package tasks

import "encoding/json"

// Task type constants.
const (
	TypeNotificationDispatch = "notification:dispatch"
	TypeSprintOverdueCheck   = "sprint:overdue-check"
)

// NotificationDispatchPayload carries everything the worker needs to persist
// and fan a notification out. RecipientIDs may contain duplicates and the
// actor; the delivery side dedupes and excludes.
type NotificationDispatchPayload struct {
	RecipientIDs []uint            `json:"recipientIds"`
	ActorID      uint              `json:"actorId"`
	Type         string            `json:"type"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	ActionURL    string            `json:"actionUrl,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewNotificationDispatchTask serializes a dispatch payload.
func NewNotificationDispatchTask(payload NotificationDispatchPayload) ([]byte, error) {
	return json.Marshal(payload)
}

// ParseNotificationDispatchTask deserializes a dispatch payload.
func ParseNotificationDispatchTask(data []byte) (NotificationDispatchPayload, error) {
	var payload NotificationDispatchPayload
	err := json.Unmarshal(data, &payload)
	return payload, err
}
