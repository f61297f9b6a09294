// Package fanout provides the Redis-backed implementation of hub.Publisher.
package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"project-hub/internal/hub"
)

// RedisPublisher publishes group events onto the Redis pub/sub substrate. The
// marshalled event is the exact frame delivered to clients; the Hub forwards
// the payload bytes untouched.
type RedisPublisher struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPublisher creates a publisher bound to the given Redis client.
func NewRedisPublisher(client *redis.Client, keyPrefix string) *RedisPublisher {
	if client == nil {
		panic("redis client cannot be nil for RedisPublisher")
	}
	if keyPrefix == "" {
		keyPrefix = "ph:"
	}
	return &RedisPublisher{client: client, keyPrefix: keyPrefix}
}

// Publish marshals the event and publishes it to the group's channel.
func (p *RedisPublisher) Publish(ctx context.Context, group string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal group event: %w", err)
	}
	channel := hub.GroupChannel(p.keyPrefix, group)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"group":   group,
			"channel": channel,
		}).WithError(err).Error("Failed to publish group event")
		return fmt.Errorf("publish group event: %w", err)
	}
	return nil
}
