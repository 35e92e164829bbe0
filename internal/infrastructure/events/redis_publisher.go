package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devicemarket/device-auction-backend/internal/domain/event"
	"github.com/devicemarket/device-auction-backend/internal/infrastructure/config"
)

// RedisPublisher hands transition events to the notification dispatcher over
// a Redis channel. The dispatcher subscribes on the other side and owns
// delivery and retries; the core's responsibility ends at PUBLISH.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewClient builds a Redis client from configuration and verifies
// connectivity.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev event.TransitionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal transition event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish transition event: %w", err)
	}

	p.logger.Debug("transition event published",
		zap.String("channel", p.channel),
		zap.String("kind", string(ev.Kind)),
		zap.String("listing_id", ev.ListingID.String()))
	return nil
}
