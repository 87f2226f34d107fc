// Package redis wraps go-redis with the handful of operations this
// service's components actually need, instrumented through the
// ambient logger the way common/db wraps pgxpool.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger is the subset of *logger.Logger this package logs through,
// kept narrow so it has no import-time dependency on common/logger.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Client wraps redis.Client with Get/Set/Delete/Publish operations. The
// procedure store's include cache (procedure.RedisRemoteCache) uses it;
// workspace.RedisVariable talks to go-redis directly.
type Client struct {
	redis  *redis.Client
	logger Logger
}

// NewClient creates a new Redis client wrapper.
func NewClient(redisClient *redis.Client, logger Logger) *Client {
	return &Client{redis: redisClient, logger: logger}
}

// GetUnderlying returns the underlying redis.Client for callers that
// need the raw client rather than this wrapper's narrower surface.
func (c *Client) GetUnderlying() *redis.Client { return c.redis }

// Get retrieves a value by key. ok is false (with a nil error) when
// the key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("redis GET failed", "key", key, "error", err)
		return "", false, fmt.Errorf("get key %s: %w", key, err)
	}
	return val, true, nil
}

// SetWithExpiry sets a key with expiration (0 disables expiry).
func (c *Client) SetWithExpiry(ctx context.Context, key, value string, expiry time.Duration) error {
	if err := c.redis.Set(ctx, key, value, expiry).Err(); err != nil {
		c.logger.Error("redis SET failed", "key", key, "error", err)
		return fmt.Errorf("set key %s: %w", key, err)
	}
	c.logger.Debug("redis SET", "key", key, "expiry", expiry)
	return nil
}

// Delete removes one or more keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("redis DEL failed", "keys", keys, "error", err)
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// Publish publishes message to channel.
func (c *Client) Publish(ctx context.Context, channel, message string) error {
	if err := c.redis.Publish(ctx, channel, message).Err(); err != nil {
		c.logger.Error("redis PUBLISH failed", "channel", channel, "error", err)
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
