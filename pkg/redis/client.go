package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SESSION MEMORY AND COUNTERS IN REDIS

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis client. ttl is the default expiry for session
// keys; conversation history and rate-limit windows inherit it unless the
// caller passes their own.
func New(addr, password string, db int, ttl time.Duration) *Client {
	return &Client{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     100,
			MinIdleConns: 10,
		}),
		ttl: ttl,
	}
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get retrieves a key's value
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

// Set sets a key's value with TTL
func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Del deletes a key
func (c *Client) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Incr increments the key's value by 1. Returns the new value and any error
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Expire sets a key's time to live (TTL)
func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return c.client.Expire(ctx, key, expiration).Result()
}

// AppendHistory pushes one serialized conversation turn onto the session's
// list, trims the list to the last maxLen entries and refreshes the TTL so
// idle sessions expire as a whole.
func (c *Client) AppendHistory(ctx context.Context, key string, turn []byte, maxLen int) error {
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, turn)
	pipe.LTrim(ctx, key, int64(-maxLen), -1)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// GetHistory returns all stored turns for the session, oldest first.
func (c *Client) GetHistory(ctx context.Context, key string) ([][]byte, error) {
	values, err := c.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	turns := make([][]byte, len(values))
	for i, v := range values {
		turns[i] = []byte(v)
	}
	return turns, nil
}

// Close closes the Redis connection
func (c *Client) Close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}
