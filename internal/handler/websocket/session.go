package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/hub"
	"project-hub/internal/service"
)

// inboundFrame is the envelope for client-to-server frames.
type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// notificationSession handles inbound frames on a notification connection.
// The surface is receive-only apart from application-level pings.
type notificationSession struct{}

func (s *notificationSession) HandleMessage(ctx context.Context, client *hub.Client, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		logrus.WithField("user_id", client.UserID()).Debug("Dropping malformed notification frame")
		return
	}
	switch frame.Type {
	case "ping":
		client.SendJSON(map[string]interface{}{"type": "pong"})
	default:
		// unknown frame types are ignored, not fatal
	}
}

// chatSession handles inbound frames on a chat room connection. Messages sent
// here go through ChatService, so persistence and fan-out match the REST path.
type chatSession struct {
	chatService *service.ChatService
	user        *domain.User
}

func (s *chatSession) HandleMessage(ctx context.Context, client *hub.Client, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":  client.UserID(),
			"room_uid": client.RoomUID(),
		}).Debug("Dropping malformed chat frame")
		return
	}

	switch frame.Type {
	case "ping":
		client.SendJSON(map[string]interface{}{"type": "pong"})
	case "send_message":
		// Blank content is a silent no-op inside PostMessage. PostMessage
		// re-checks membership, so a user removed from the room after
		// connecting loses the session here. Store failures are logged and
		// dropped; the session stays open.
		if _, err := s.chatService.PostMessage(ctx, s.user, client.RoomUID(), frame.Content); err != nil {
			logCtx := logrus.WithFields(logrus.Fields{
				"user_id":  client.UserID(),
				"room_uid": client.RoomUID(),
			})
			if errors.Is(err, service.ErrNotParticipant) {
				logCtx.Warn("Session user no longer a room participant, closing")
				client.CloseWithCode(CloseForbidden, "not a participant")
				return
			}
			logCtx.WithError(err).Warn("Failed to post chat message from session")
		}
	case "typing_start":
		s.chatService.PublishTyping(ctx, s.user, client.RoomUID(), true)
	case "typing_stop":
		s.chatService.PublishTyping(ctx, s.user, client.RoomUID(), false)
	default:
		// unknown frame types are ignored
	}
}
