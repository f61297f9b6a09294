package hub

import (
	"context"
	"fmt"
)

// Outbound frame kinds pushed to connected clients.
const (
	EventKindNotification = "notification_event"
	EventKindChat         = "chat_event"
)

// Notification change signals. Clients re-fetch notification content over the
// HTTP API; only these tags travel over the socket.
const (
	NotificationEventCreated = "created"
	NotificationEventRead    = "read"
	NotificationEventReadAll = "read_all"
)

// Chat event types carried inside a chat_event frame.
const (
	ChatEventTypingStart    = "typing_start"
	ChatEventTypingStop     = "typing_stop"
	ChatEventMessageCreated = "message_created"
	ChatEventMessageUpdated = "message_updated"
	ChatEventMessageDeleted = "message_deleted"
	ChatEventReadReceipt    = "read_receipt"
)

// NotificationGroup returns the broadcast group name for a user's personal
// notification channel.
func NotificationGroup(userID uint) string {
	return fmt.Sprintf("user-notifications-%d", userID)
}

// ChatRoomGroup returns the broadcast group name for a chat room.
func ChatRoomGroup(roomUID string) string {
	return "chat-room-" + roomUID
}

// NotificationEvent is the frame forwarded to notification sessions.
type NotificationEvent struct {
	Type  string `json:"type"` // always EventKindNotification
	Event string `json:"event"`
}

// NewNotificationEvent builds a notification change signal frame.
func NewNotificationEvent(event string) NotificationEvent {
	return NotificationEvent{Type: EventKindNotification, Event: event}
}

// ChatEvent is the frame forwarded to chat sessions.
type ChatEvent struct {
	Type      string      `json:"type"` // always EventKindChat
	EventType string      `json:"eventType"`
	Payload   interface{} `json:"payload"`
}

// NewChatEvent builds a chat frame of the given event type.
func NewChatEvent(eventType string, payload interface{}) ChatEvent {
	return ChatEvent{Type: EventKindChat, EventType: eventType, Payload: payload}
}

// Publisher sends an event into a named group. Implementations must route
// through a shared substrate (Redis pub/sub) so fan-out reaches sessions in
// every process, not just the publisher's. Delivery is best-effort against the
// membership snapshot at publish time; events for empty groups are dropped.
type Publisher interface {
	Publish(ctx context.Context, group string, event interface{}) error
}
