package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Well-known keys mirroring the freshest artifacts for external dashboards.
const (
	KeySignals = "signals"
	KeyFocus   = "focus"
)

// PayloadCache mirrors the most recent signal/focus payloads. Writes are
// best-effort; the file artifacts stay authoritative.
type PayloadCache interface {
	SetLatest(ctx context.Context, key string, payload interface{}) error
	GetLatest(ctx context.Context, key string) ([]byte, bool, error)
	Close() error
}

type redisPayloadCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisPayloadCache builds a cache keyed by artifact name.
func NewRedisPayloadCache(addr, password string, db int, ttl time.Duration, prefix string) (PayloadCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if prefix == "" {
		prefix = "edgescan_latest"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisPayloadCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisPayloadCache) key(name string) string {
	return fmt.Sprintf("%s:%s", c.prefix, name)
}

func (c *redisPayloadCache) SetLatest(ctx context.Context, name string, payload interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(name), raw, c.ttl).Err()
}

func (c *redisPayloadCache) GetLatest(ctx context.Context, name string) ([]byte, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(name)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *redisPayloadCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
