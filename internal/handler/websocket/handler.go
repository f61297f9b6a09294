// Package websocket upgrades connections and binds them to notification or
// chat sessions on the hub.
package websocket

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"project-hub/internal/hub"
	"project-hub/internal/service"
)

// Application close codes sent after the upgrade when a session is rejected.
// Rejections happen post-upgrade so browser clients can read the code; a plain
// HTTP error would surface as an opaque handshake failure.
const (
	CloseUnauthorized = 4401 // anonymous identity on an authenticated surface
	CloseBadRequest   = 4400 // missing or malformed parameters
	CloseForbidden    = 4403 // authenticated but not allowed (not a participant)
)

// WebSocketHandler upgrades HTTP requests and starts sessions.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	hub         *hub.Hub
	authService *service.AuthService
	chatService *service.ChatService
}

// NewWebSocketHandler creates a WebSocketHandler.
func NewWebSocketHandler(h *hub.Hub, authService *service.AuthService, chatService *service.ChatService) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if authService == nil {
		panic("AuthService cannot be nil for WebSocketHandler")
	}
	if chatService == nil {
		panic("ChatService cannot be nil for WebSocketHandler")
	}
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origins once the frontend host is fixed
				return true
			},
		},
		hub:         h,
		authService: authService,
		chatService: chatService,
	}
}

// HandleNotifications handles GET /ws/notifications?token=<key>.
// Anonymous resolutions are closed with 4401 after the upgrade.
func (h *WebSocketHandler) HandleNotifications(c *gin.Context) {
	identity, err := h.authService.ResolveToken(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("WS Handler: failed to upgrade notification connection")
		return
	}

	session := &notificationSession{}
	client := hub.NewClient(h.hub, conn, session, identity.UserID, "")

	if identity.Anonymous() {
		logrus.Debug("WS Handler: anonymous notification connection rejected")
		client.CloseWithCode(CloseUnauthorized, "authentication required")
		return
	}

	client.JoinGroup(hub.NotificationGroup(identity.UserID))
	client.Run()
	client.SendJSON(map[string]interface{}{"type": "connected"})
	logrus.WithField("user_id", identity.UserID).Info("Notification session started")
}

// HandleChat handles GET /ws/chat/:roomUid?token=<key>. The session is
// rejected with 4401 for anonymous users, 4400 for a missing room uid and
// 4403 for non-participants.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	roomUID := c.Param("roomUid")
	identity, err := h.authService.ResolveToken(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("WS Handler: failed to upgrade chat connection")
		return
	}

	session := &chatSession{chatService: h.chatService, user: identity.User}
	client := hub.NewClient(h.hub, conn, session, identity.UserID, roomUID)

	if roomUID == "" {
		client.CloseWithCode(CloseBadRequest, "room uid required")
		return
	}
	if identity.Anonymous() {
		logrus.WithField("room_uid", roomUID).Debug("WS Handler: anonymous chat connection rejected")
		client.CloseWithCode(CloseUnauthorized, "authentication required")
		return
	}

	isMember, err := h.chatService.IsParticipant(c.Request.Context(), roomUID, identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			client.CloseWithCode(CloseBadRequest, "room not found")
		} else {
			client.CloseWithCode(websocket.CloseInternalServerErr, "failed to validate membership")
		}
		return
	}
	if !isMember {
		logrus.WithFields(logrus.Fields{
			"user_id":  identity.UserID,
			"room_uid": roomUID,
		}).Warn("WS Handler: non-participant chat connection rejected")
		client.CloseWithCode(CloseForbidden, "not a participant")
		return
	}

	client.JoinGroup(hub.ChatRoomGroup(roomUID))
	client.Run()
	client.SendJSON(map[string]interface{}{"type": "connected", "roomId": roomUID})
	logrus.WithFields(logrus.Fields{
		"user_id":  identity.UserID,
		"room_uid": roomUID,
	}).Info("Chat session started")
}
