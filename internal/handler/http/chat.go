package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// ChatHandler handles the chat REST surface. Event fan-out happens inside
// ChatService, so messages posted here reach WebSocket sessions too.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListRooms handles GET /api/chat/rooms.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	user := middleware.CurrentUser(c)
	summaries, err := h.chatService.ListRooms(c.Request.Context(), user.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payloads := make([]RoomPayload, 0, len(summaries))
	for i := range summaries {
		payloads = append(payloads, renderRoomSummary(&summaries[i]))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": payloads})
}

// CreateRoomRequest is the room creation body. For DMs only userId is used;
// for channels name, isPrivate and memberIds apply.
type CreateRoomRequest struct {
	RoomType  string   `json:"roomType" binding:"required,oneof=dm channel"`
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	IsPrivate bool     `json:"isPrivate"`
	MemberIDs []string `json:"memberIds"`
}

// CreateRoom handles POST /api/chat/rooms.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)

	if req.RoomType == "dm" {
		if req.UserID == "" {
			ErrorResponse(c, http.StatusBadRequest, "userId is required for a DM room")
			return
		}
		room, err := h.chatService.CreateDM(c.Request.Context(), actor, req.UserID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		SuccessResponse(c, http.StatusCreated, gin.H{"room": gin.H{"id": room.UID, "roomType": room.RoomType}})
		return
	}

	room, err := h.chatService.CreateChannel(c.Request.Context(), actor, req.Name, req.IsPrivate, req.MemberIDs)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"room": gin.H{
		"id":       room.UID,
		"roomType": room.RoomType,
		"name":     room.Name,
	}})
}

// AddParticipantRequest is the body for inviting a user to a channel.
type AddParticipantRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// AddParticipant handles POST /api/chat/rooms/:uid/participants.
func (h *ChatHandler) AddParticipant(c *gin.Context) {
	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: userId required")
		return
	}
	actor := middleware.CurrentUser(c)
	if err := h.chatService.AddParticipant(c.Request.Context(), actor, c.Param("uid"), req.UserID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"added": true})
}

// ListMessages handles GET /api/chat/rooms/:uid/messages?limit=N.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	user := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	messages, err := h.chatService.ListMessages(c.Request.Context(), c.Param("uid"), user.ID, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"messages": messages})
}

// MessageRequest is the message post/edit body.
type MessageRequest struct {
	Content string `json:"content"`
}

// PostMessage handles POST /api/chat/rooms/:uid/messages. Blank content is
// accepted and ignored, matching the WebSocket send path.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	payload, err := h.chatService.PostMessage(c.Request.Context(), actor, c.Param("uid"), req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if payload == nil {
		SuccessResponse(c, http.StatusOK, gin.H{"message": nil})
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"message": payload})
}

// EditMessage handles PATCH /api/chat/rooms/:uid/messages/:messageUid.
func (h *ChatHandler) EditMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	payload, err := h.chatService.EditMessage(c.Request.Context(), actor, c.Param("uid"), c.Param("messageUid"), req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": payload})
}

// DeleteMessage handles DELETE /api/chat/rooms/:uid/messages/:messageUid.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.chatService.DeleteMessage(c.Request.Context(), actor, c.Param("uid"), c.Param("messageUid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkRead handles POST /api/chat/rooms/:uid/read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.chatService.MarkRead(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"read": true})
}
