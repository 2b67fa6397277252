package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"metalrates/internal/domain"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "live-rate"

// RedisPublisher announces payloads on a Redis channel so other instances and
// storefront workers see the same rates.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func (p *RedisPublisher) Publish(ctx context.Context, payload domain.RatePayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode rate payload: %w", err)
	}
	if err = p.client.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish on %q: %w", p.channel, err)
	}
	return nil
}

func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}
