package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const stageListKey = "stages:all"

// StageCache caches the stage list in Redis. The stage table is tiny and
// read on every lead write, so it is the one read path worth caching. All
// methods degrade to a miss on Redis errors; callers fall through to the
// database.
type StageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStageCache connects to Redis and returns a stage cache.
func NewStageCache(redisURL string, ttl time.Duration) (*StageCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &StageCache{client: client, ttl: ttl}, nil
}

// NewStageCacheWithClient wraps an existing client; used by tests.
func NewStageCacheWithClient(client *redis.Client, ttl time.Duration) *StageCache {
	return &StageCache{client: client, ttl: ttl}
}

// Client exposes the underlying Redis client for health checks.
func (c *StageCache) Client() *redis.Client {
	return c.client
}

// Get unmarshals the cached stage list into dest. The second return is false
// on a miss or on any Redis error.
func (c *StageCache) Get(ctx context.Context, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, stageListKey).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		// Corrupt entry; drop it and treat as a miss.
		c.client.Del(ctx, stageListKey)
		return false, nil
	}
	return true, nil
}

// Set stores the stage list with the configured TTL.
func (c *StageCache) Set(ctx context.Context, stages interface{}) error {
	data, err := json.Marshal(stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	return c.client.Set(ctx, stageListKey, data, c.ttl).Err()
}

// Invalidate removes the cached stage list. Called on stage create/delete.
func (c *StageCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, stageListKey).Err()
}

// Close closes the Redis connection.
func (c *StageCache) Close() error {
	return c.client.Close()
}
