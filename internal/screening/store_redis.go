package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// RedisCache caches the latest screening snapshot per client. The TTL is a
// hygiene bound, not the staleness policy: the gate always re-checks the
// snapshot's own timestamp.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a connected client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(clientID id.ClientID) string {
	return "screening:latest:" + clientID.String()
}

func (c *RedisCache) SaveLatest(ctx context.Context, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal screening: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(result.ClientID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache screening: %w", err)
	}
	return nil
}

func (c *RedisCache) FindLatest(ctx context.Context, clientID id.ClientID) (*Result, error) {
	payload, err := c.client.Get(ctx, cacheKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read screening cache: %w", err)
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal cached screening: %w", err)
	}
	return &result, nil
}
