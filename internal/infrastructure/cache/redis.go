package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// RedisCache wraps the Redis client with typed operations
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Client returns the underlying Redis client
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.key(key)).Result()
}

// GetJSON retrieves and unmarshals a JSON value from cache
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Set stores a value in cache with optional TTL
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// SetJSON marshals and stores a value in cache
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, string(data), ttl)
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixedKeys := make([]string, len(keys))
	for i, k := range keys {
		prefixedKeys[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixedKeys...).Err()
}

// SetNX sets a value only if the key does not exist (for distributed locks)
func (c *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, c.key(key), value, ttl).Result()
}

// Cache key constants
const (
	KeyGapReportPrefix = "cache:gaps:"
	KeyScanLockPrefix  = "scan:lock:"
)

// AcquireScanLock takes the per-account scan lock. The TTL caps how long a
// crashed scan can block subsequent ones.
func (c *RedisCache) AcquireScanLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	return c.SetNX(ctx, KeyScanLockPrefix+accountID, "locked", ttl)
}

// ReleaseScanLock releases the per-account scan lock
func (c *RedisCache) ReleaseScanLock(ctx context.Context, accountID string) error {
	return c.Delete(ctx, KeyScanLockPrefix+accountID)
}

// CacheGapReport caches a computed gap report for an organization
func (c *RedisCache) CacheGapReport(ctx context.Context, orgID string, report any, ttl time.Duration) error {
	return c.SetJSON(ctx, KeyGapReportPrefix+orgID, report, ttl)
}

// GetCachedGapReport retrieves a cached gap report. Returns redis.Nil
// when nothing is cached.
func (c *RedisCache) GetCachedGapReport(ctx context.Context, orgID string, dest any) error {
	return c.GetJSON(ctx, KeyGapReportPrefix+orgID, dest)
}

// InvalidateGapReport drops the cached gap report after a scan changes
// the underlying data.
func (c *RedisCache) InvalidateGapReport(ctx context.Context, orgID string) error {
	return c.Delete(ctx, KeyGapReportPrefix+orgID)
}
