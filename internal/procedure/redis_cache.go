package procedure

import (
	"context"
	"time"

	redisclient "github.com/lyzr/sequencer/common/redis"
)

// RedisRemoteCache adapts common/redis.Client into a Store RemoteCache,
// letting a cluster of job-controller processes sharing one Redis
// instance reuse each other's parsed-and-patched include bytes instead
// of each process loading and patching its own copy.
type RedisRemoteCache struct {
	client *redisclient.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRemoteCache builds a RedisRemoteCache. keyPrefix namespaces
// this cache's keys (e.g. "sequencer:include:") from anything else
// sharing the same Redis instance. ttl of 0 means entries never
// expire.
func NewRedisRemoteCache(client *redisclient.Client, keyPrefix string, ttl time.Duration) *RedisRemoteCache {
	return &RedisRemoteCache{client: client, prefix: keyPrefix, ttl: ttl}
}

func (c *RedisRemoteCache) redisKey(key string) string { return c.prefix + key }

func (c *RedisRemoteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok, err := c.client.Get(ctx, c.redisKey(key))
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(val), true, nil
}

func (c *RedisRemoteCache) Set(ctx context.Context, key string, raw []byte) error {
	return c.client.SetWithExpiry(ctx, c.redisKey(key), string(raw), c.ttl)
}
