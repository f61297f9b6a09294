package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-client outbound buffer.
	sendBufferSize = 256
)

// InboundHandler processes one raw client message. Implementations run on the
// session's own goroutine, so blocking store access is allowed here (and never
// on the Hub's fan-out path). A failure while handling one message must not
// tear the session down.
type InboundHandler interface {
	HandleMessage(ctx context.Context, client *Client, data []byte)
}

// Client represents one live WebSocket session: the connection, the
// authenticated user and the session's group membership.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	handler InboundHandler

	userID  uint
	roomUID string // set for chat sessions, empty for notification sessions

	// group this session joined; empty until JoinGroup ran. Teardown leaves
	// whatever is recorded here, making partial-init cleanup safe.
	group string

	send      chan []byte
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection into a session.
func NewClient(hub *Hub, conn *websocket.Conn, handler InboundHandler, userID uint, roomUID string) *Client {
	if hub == nil {
		panic("Hub cannot be nil for Client")
	}
	if conn == nil {
		panic("connection cannot be nil for Client")
	}
	return &Client{
		hub:     hub,
		conn:    conn,
		handler: handler,
		userID:  userID,
		roomUID: roomUID,
		send:    make(chan []byte, sendBufferSize),
	}
}

func (c *Client) UserID() uint    { return c.userID }
func (c *Client) RoomUID() string { return c.roomUID }

// JoinGroup registers the session in a broadcast group and records the
// membership for teardown.
func (c *Client) JoinGroup(group string) {
	c.group = group
	c.hub.Join(group, c)
}

// LeaveGroups removes the session from its group, if it ever joined one.
// Safe to call multiple times and safe when JoinGroup never ran.
func (c *Client) LeaveGroups() {
	if c.group != "" {
		c.hub.Leave(c.group, c)
	}
}

// enqueue puts a message on the outbound buffer without blocking.
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// SendJSON marshals v and queues it for delivery to this client.
func (c *Client) SendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).WithField("user_id", c.userID).Error("Failed to marshal outbound frame")
		return
	}
	if !c.enqueue(data) {
		logrus.WithField("user_id", c.userID).Warn("Client send buffer full, dropping frame")
	}
}

// Run starts the read and write pumps. It returns immediately; the pumps own
// the connection from here on.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// readPump reads client frames and dispatches them to the inbound handler.
// On exit (close or transport failure) it deregisters the session.
func (c *Client) readPump() {
	defer func() {
		c.LeaveGroups()
		c.closeConn()
		logrus.WithFields(logrus.Fields{
			"user_id": c.userID,
			"group":   c.group,
		}).Info("Session closed, client deregistered")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "group": c.group})
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if c.handler != nil {
			// Each message gets its own context; a slow or failing handler
			// affects only this message, not the session.
			c.handler.HandleMessage(context.Background(), c, message)
		}
	}
}

// writePump moves messages from the send buffer onto the wire and keeps the
// connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": c.userID, "group": c.group}).
					WithError(err).Warn("Failed to write message to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseWithCode sends a close frame with an application close code, then
// closes the connection. Used for rejections during session setup.
func (c *Client) CloseWithCode(code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	c.closeConn()
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
