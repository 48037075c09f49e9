package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// getInt reads an integer key. found is false when the key does not exist.
func (c *Client) getInt(ctx context.Context, key string) (val int, found bool, err error) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get failed: %w", err)
	}
	val, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return val, true, nil
}

// setIntNX stores an integer key unless it already exists and returns the
// value held by the key afterwards.
func (c *Client) setIntNX(ctx context.Context, key string, val int, ttl time.Duration) (int, error) {
	ok, err := c.rdb.SetNX(ctx, key, strconv.Itoa(val), ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("setnx failed: %w", err)
	}
	if ok {
		return val, nil
	}

	existing, found, err := c.getInt(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		// Expired between SETNX and GET; our value is as good as any.
		return val, nil
	}
	return existing, nil
}
