// Package events provides the Redis-backed implementation of the change feed.
// Each user gets a channel; UI clients subscribe to their own channel and
// re-read whatever the event names.
package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/cache"
	"github.com/emires65/simpleprofit-dao-trader/pkg/metrics"
)

// ChannelPrefix namespaces the per-user pub/sub channels
const ChannelPrefix = "simpleprofit:changes:"

// RedisPublisher publishes change events over Redis pub/sub
type RedisPublisher struct {
	redis  cache.RedisClient
	logger *zap.Logger
}

// NewRedisPublisher creates a Redis-backed event publisher
func NewRedisPublisher(redis cache.RedisClient, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{redis: redis, logger: logger}
}

// Publish emits one event on the owning user's channel. Failures are logged
// and swallowed: the mutation is already committed and the UI falls back to
// polling, so a dead transport must not fail the financial operation.
func (p *RedisPublisher) Publish(ctx context.Context, event entities.ChangeEvent) error {
	channel := fmt.Sprintf("%s%s", ChannelPrefix, event.UserID)

	if err := p.redis.Publish(ctx, channel, event); err != nil {
		p.logger.Warn("failed to publish change event",
			zap.String("event", string(event.Type)),
			zap.String("user_id", event.UserID.String()),
			zap.Error(err))
		return nil
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
	return nil
}
