package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sewline/backend/internal/application/pnl"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisReportCache implements pnl.ReportCache using Redis. Reports are
// stored as JSON under a shared key prefix so that invalidation can sweep
// them with one SCAN, and every instance of the service sees the same
// cache state.
type RedisReportCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisReportCache creates a new Redis-based report cache
func NewRedisReportCache(cfg RedisConfig, ttl time.Duration) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReportCacheWithClient(client, "", ttl), nil
}

// NewRedisReportCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisReportCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisReportCache {
	if keyPrefix == "" {
		keyPrefix = "report:"
	}
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &RedisReportCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get retrieves a cached report. A miss returns nil without error.
func (c *RedisReportCache) Get(ctx context.Context, key string) (*pnl.PeriodPnLReport, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached report: %w", err)
	}

	var report pnl.PeriodPnLReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return &report, nil
}

// Set stores a report in the cache with the configured TTL
func (c *RedisReportCache) Set(ctx context.Context, key string, report *pnl.PeriodPnLReport) error {
	if report == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, c.keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// InvalidateAll removes all cached reports under the key prefix
func (c *RedisReportCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan report keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete report keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisReportCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisReportCache implements pnl.ReportCache
var _ pnl.ReportCache = (*RedisReportCache)(nil)
