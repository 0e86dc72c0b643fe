package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/batala/site-server-go/internal/config"
)

// Client is the shared connection used by the login limiter and the site
// cache.
type Client struct {
	*redis.Client
}

// NewClient parses redisURL (redis:// or rediss://), applies the operation
// timeouts and verifies the server answers before returning.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = config.RedisDialTimeout
	}
	opts.ReadTimeout = config.RedisOpTimeout
	opts.WriteTimeout = config.RedisOpTimeout

	c := &Client{redis.NewClient(opts)}
	if err := c.Healthy(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// Healthy pings Redis, bounded by RedisDialTimeout.
func (c *Client) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.RedisDialTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}
