// Package cache provides the Redis layer backing the auth-context
// cache and the per-user rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool tuning applied when Options leaves a field zero.
const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	poolTimeout         = 4 * time.Second
	connMaxIdleTime     = 5 * time.Minute
)

// Options tunes the Redis connection pool.
type Options struct {
	PoolSize     int
	MinIdleConns int
}

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = defaultPoolSize
	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
	}
	opt.MinIdleConns = defaultMinIdleConns
	if opts.MinIdleConns > 0 {
		opt.MinIdleConns = opts.MinIdleConns
	}
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}
