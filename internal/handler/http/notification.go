package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// NotificationHandler handles the notification API.
type NotificationHandler struct {
	notifService *service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(notifService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

// List handles GET /api/notifications?unread=true&limit=N.
func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	unreadOnly := c.Query("unread") == "true"

	notifications, unreadCount, err := h.notifService.List(c.Request.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	payloads := make([]NotificationPayload, 0, len(notifications))
	for i := range notifications {
		payloads = append(payloads, renderNotification(&notifications[i]))
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"notifications": payloads,
		"unreadCount":   unreadCount,
	})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	count, err := h.notifService.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"unreadCount": count})
}

// MarkRead handles POST /api/notifications/:uid/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.notifService.MarkRead(c.Request.Context(), user.ID, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"read": true})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	updated, err := h.notifService.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"updated": updated})
}
