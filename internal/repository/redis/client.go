package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/swirlhq/aio-assistant/internal/config"
)

// Client owns the Redis connection shared by the session store and the rate
// limiter.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies it with a ping. Callers treat a
// failure here as "run without Redis", so it must fail fast.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Client exposes the underlying go-redis client for command access.
func (c *Client) Client() *redis.Client {
	return c.rdb
}
