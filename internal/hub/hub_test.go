package hub

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHub builds a Hub around a client that is never dialed; these tests only
// exercise the in-process group registry.
func testHub() *Hub {
	return NewHub(redis.NewClient(&redis.Options{Addr: "localhost:6379"}), "test:")
}

// testClient builds a registry-only client with the given send buffer capacity.
func testClient(userID uint, buffer int) *Client {
	return &Client{
		userID: userID,
		send:   make(chan []byte, buffer),
	}
}

func TestHub_JoinAndLeave(t *testing.T) {
	h := testHub()
	group := NotificationGroup(7)
	a := testClient(7, 1)
	b := testClient(7, 1)

	h.Join(group, a)
	h.Join(group, b)
	assert.Equal(t, 2, h.GroupSize(group), "two sessions of the same user coexist in the group")

	h.Leave(group, a)
	assert.Equal(t, 1, h.GroupSize(group))

	h.Leave(group, b)
	assert.Equal(t, 0, h.GroupSize(group))

	h.groupsMu.RLock()
	_, exists := h.groups[group]
	h.groupsMu.RUnlock()
	assert.False(t, exists, "empty groups are removed from the registry")
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	h := testHub()
	group := ChatRoomGroup("cr-1")
	c := testClient(1, 1)

	h.Leave(group, c) // never joined
	h.Join(group, c)
	h.Leave(group, c)
	h.Leave(group, c) // second leave

	assert.Equal(t, 0, h.GroupSize(group))
}

func TestHub_JoinIsIdempotentPerClient(t *testing.T) {
	h := testHub()
	group := ChatRoomGroup("cr-1")
	c := testClient(1, 1)

	h.Join(group, c)
	h.Join(group, c)

	assert.Equal(t, 1, h.GroupSize(group))
}

func TestHub_DeliverReachesOnlyGroupMembers(t *testing.T) {
	h := testHub()
	inRoom := testClient(1, 4)
	elsewhere := testClient(2, 4)

	h.Join(ChatRoomGroup("cr-1"), inRoom)
	h.Join(ChatRoomGroup("cr-2"), elsewhere)

	h.Deliver(ChatRoomGroup("cr-1"), []byte(`{"type":"chat_event"}`))

	require.Len(t, inRoom.send, 1)
	assert.Equal(t, `{"type":"chat_event"}`, string(<-inRoom.send))
	assert.Empty(t, elsewhere.send)
}

func TestHub_DeliverToEmptyGroupIsNoOp(t *testing.T) {
	h := testHub()
	h.Deliver(ChatRoomGroup("cr-missing"), []byte("dropped"))
}

func TestHub_DeliverSkipsFullBuffers(t *testing.T) {
	h := testHub()
	group := ChatRoomGroup("cr-1")
	full := testClient(1, 1)
	healthy := testClient(2, 4)
	full.send <- []byte("backlog") // fill the buffer

	h.Join(group, full)
	h.Join(group, healthy)

	h.Deliver(group, []byte("event"))

	assert.Len(t, full.send, 1, "full client keeps only its backlog, new event dropped")
	require.Len(t, healthy.send, 1, "slow sibling must not block delivery")
	assert.Equal(t, "event", string(<-healthy.send))
}

func TestGroupChannel(t *testing.T) {
	assert.Equal(t, "ph:group:user-notifications-5", GroupChannel("ph:", NotificationGroup(5)))
	assert.Equal(t, "ph:group:chat-room-cr-9", GroupChannel("ph:", ChatRoomGroup("cr-9")))
}
