// Package hub implements the process-local group registry and the bridge to
// the Redis pub/sub substrate that fans events out across processes.
package hub

import (
	"context"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Hub maintains the set of connected clients per broadcast group and forwards
// every event received from Redis to the local members of its group.
//
// Producers never talk to the Hub directly: they publish through a Publisher,
// and the Hub's subscription loop picks the event up like any other process
// would. That keeps single-process and multi-process deployments on the same
// code path.
type Hub struct {
	// groups is the only shared mutable state: group name -> member set.
	groups   map[string]map[*Client]bool
	groupsMu sync.RWMutex

	redisClient *redis.Client
	keyPrefix   string

	pubsub *redis.PubSub
}

// NewHub creates a Hub bound to the given Redis client.
func NewHub(redisClient *redis.Client, keyPrefix string) *Hub {
	if redisClient == nil {
		panic("redis client cannot be nil for Hub")
	}
	if keyPrefix == "" {
		keyPrefix = "ph:"
	}
	return &Hub{
		groups:      make(map[string]map[*Client]bool),
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

// channelPattern is the pub/sub pattern covering every group channel.
func (h *Hub) channelPattern() string {
	return h.keyPrefix + "group:*"
}

// GroupChannel returns the Redis channel name carrying a group's events.
func GroupChannel(keyPrefix, group string) string {
	return keyPrefix + "group:" + group
}

// Join registers a client as a member of the named group.
func (h *Hub) Join(group string, client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to join a nil client")
		return
	}
	h.groupsMu.Lock()
	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][client] = true
	h.groupsMu.Unlock()
	logrus.WithFields(logrus.Fields{
		"group":   group,
		"user_id": client.UserID(),
	}).Debug("Client joined group")
}

// Leave removes a client from the named group. Leaving a group the client is
// not a member of (or that does not exist) is a no-op, so teardown paths may
// call it unconditionally, even when Join never ran.
func (h *Hub) Leave(group string, client *Client) {
	if client == nil {
		return
	}
	h.groupsMu.Lock()
	if members, ok := h.groups[group]; ok {
		if _, isMember := members[client]; isMember {
			delete(members, client)
			if len(members) == 0 {
				delete(h.groups, group)
			}
		}
	}
	h.groupsMu.Unlock()
	logrus.WithFields(logrus.Fields{
		"group":   group,
		"user_id": client.UserID(),
	}).Debug("Client left group")
}

// GroupSize returns the current number of members in a group.
func (h *Hub) GroupSize(group string) int {
	h.groupsMu.RLock()
	defer h.groupsMu.RUnlock()
	return len(h.groups[group])
}

// Deliver writes a raw message to every current member of the group. A member
// whose send buffer is full is skipped; one slow or dead socket must never
// hold up delivery to its siblings.
func (h *Hub) Deliver(group string, message []byte) {
	h.groupsMu.RLock()
	members := h.groups[group]
	// Copy the member list so the write loop runs without the lock held.
	recipients := make([]*Client, 0, len(members))
	for client := range members {
		recipients = append(recipients, client)
	}
	h.groupsMu.RUnlock()

	if len(recipients) == 0 {
		return
	}
	for _, client := range recipients {
		if !client.enqueue(message) {
			logrus.WithFields(logrus.Fields{
				"group":   group,
				"user_id": client.UserID(),
			}).Warn("Client send buffer full, dropping event for this client")
		}
	}
}

// Run subscribes to the group channel pattern and forwards incoming events to
// local group members until the context is cancelled or Shutdown is called.
// It should run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	log := logrus.WithField("component", "hub")

	h.pubsub = h.redisClient.PSubscribe(ctx, h.channelPattern())
	// Force the subscription before announcing readiness.
	if _, err := h.pubsub.Receive(ctx); err != nil {
		log.WithError(err).Error("Failed to establish pub/sub subscription")
		return
	}
	log.WithField("pattern", h.channelPattern()).Info("Hub subscribed, fan-out running")

	prefix := h.keyPrefix + "group:"
	for msg := range h.pubsub.Channel() {
		group := strings.TrimPrefix(msg.Channel, prefix)
		h.Deliver(group, []byte(msg.Payload))
	}
	log.Info("Hub subscription channel closed, fan-out stopped")
}

// Shutdown closes the pub/sub subscription, which ends the Run loop.
func (h *Hub) Shutdown() {
	if h.pubsub != nil {
		if err := h.pubsub.Close(); err != nil {
			logrus.WithError(err).Warn("Error closing hub pub/sub subscription")
		}
	}
}
