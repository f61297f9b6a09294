package websocket_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"project-hub/internal/domain"
	wshandler "project-hub/internal/handler/websocket"
	"project-hub/internal/hub"
	"project-hub/internal/repository"
	"project-hub/internal/repository/mocks"
	"project-hub/internal/service"
)

type wsFixture struct {
	server    *httptest.Server
	hub       *hub.Hub
	tokenRepo *mocks.TokenRepository
	chatRepo  *mocks.ChatRepository
}

// newWSFixture stands up the ws routes against mocked stores. The hub's Redis
// client is never dialed; registration and group bookkeeping are in-process.
func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := new(mocks.UserRepository)
	tokenRepo := new(mocks.TokenRepository)
	chatRepo := new(mocks.ChatRepository)

	authService := service.NewAuthService(userRepo, tokenRepo)
	chatService := service.NewChatService(chatRepo, userRepo, noopPublisher{})
	h := hub.NewHub(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "test:")
	handler := wshandler.NewWebSocketHandler(h, authService, chatService)

	router := gin.New()
	router.GET("/ws/notifications", handler.HandleNotifications)
	router.GET("/ws/chat/:roomUid", handler.HandleChat)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &wsFixture{server: server, hub: h, tokenRepo: tokenRepo, chatRepo: chatRepo}
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, group string, event interface{}) error {
	return nil
}

func (f *wsFixture) dial(t *testing.T, path string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "upgrade must succeed; rejection happens with a close frame")
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readCloseCode reads until the peer closes and returns the close code.
func readCloseCode(t *testing.T, conn *gws.Conn) int {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		closeErr, ok := err.(*gws.CloseError)
		require.True(t, ok, "expected a close frame, got %v", err)
		return closeErr.Code
	}
}

func TestHandleNotifications_AnonymousClosedWithoutJoining(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "/ws/notifications")

	assert.Equal(t, 4401, readCloseCode(t, conn))
	assert.Equal(t, 0, f.hub.GroupSize(hub.NotificationGroup(0)),
		"a rejected session must not appear in any group")
}

func TestHandleNotifications_UnknownTokenClosedWithoutJoining(t *testing.T) {
	f := newWSFixture(t)
	f.tokenRepo.On("FindByKey", mock.Anything, "stale").
		Return(nil, repository.ErrTokenNotFound).Once()

	conn := f.dial(t, "/ws/notifications?token=stale")

	assert.Equal(t, 4401, readCloseCode(t, conn))
	f.tokenRepo.AssertExpectations(t)
}

func TestHandleChat_NonParticipantClosedWithoutJoining(t *testing.T) {
	f := newWSFixture(t)
	f.tokenRepo.On("FindByKey", mock.Anything, "tok-7").
		Return(&domain.AuthToken{Key: "tok-7", UserID: 7, User: domain.User{ID: 7, UID: "u-7", IsActive: true}}, nil).
		Once()
	f.chatRepo.On("FindRoomByUID", mock.Anything, "r-1").
		Return(&domain.ChatRoom{ID: 3, UID: "r-1", RoomType: domain.ChatRoomTypeChannel}, nil).Once()
	f.chatRepo.On("FindParticipant", mock.Anything, uint(3), uint(7)).
		Return(nil, repository.ErrParticipantNotFound).Once()

	conn := f.dial(t, "/ws/chat/r-1?token=tok-7")

	assert.Equal(t, 4403, readCloseCode(t, conn))
	assert.Equal(t, 0, f.hub.GroupSize(hub.ChatRoomGroup("r-1")),
		"a rejected session must not appear in the room's group")
	f.chatRepo.AssertExpectations(t)
}

func TestHandleChat_UnknownRoomClosedBadRequest(t *testing.T) {
	f := newWSFixture(t)
	f.tokenRepo.On("FindByKey", mock.Anything, "tok-7").
		Return(&domain.AuthToken{Key: "tok-7", UserID: 7, User: domain.User{ID: 7, IsActive: true}}, nil).
		Once()
	f.chatRepo.On("FindRoomByUID", mock.Anything, "r-missing").
		Return(nil, repository.ErrRoomNotFound).Once()

	conn := f.dial(t, "/ws/chat/r-missing?token=tok-7")

	assert.Equal(t, 4400, readCloseCode(t, conn))
}

func TestHandleChat_ParticipantJoinsAndGetsAck(t *testing.T) {
	f := newWSFixture(t)
	f.tokenRepo.On("FindByKey", mock.Anything, "tok-7").
		Return(&domain.AuthToken{Key: "tok-7", UserID: 7, User: domain.User{ID: 7, IsActive: true}}, nil).
		Once()
	f.chatRepo.On("FindRoomByUID", mock.Anything, "r-1").
		Return(&domain.ChatRoom{ID: 3, UID: "r-1", RoomType: domain.ChatRoomTypeChannel}, nil).Once()
	f.chatRepo.On("FindParticipant", mock.Anything, uint(3), uint(7)).
		Return(&domain.ChatParticipant{RoomID: 3, UserID: 7}, nil).Once()

	conn := f.dial(t, "/ws/chat/r-1?token=tok-7")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack map[string]interface{}
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "connected", ack["type"])
	assert.Equal(t, "r-1", ack["roomId"])
	assert.Equal(t, 1, f.hub.GroupSize(hub.ChatRoomGroup("r-1")))
}
