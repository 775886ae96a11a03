package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sewline/backend/internal/application/pnl"
	"github.com/sewline/backend/internal/infrastructure/config"
)

// ReportCacheFactory creates report caches based on configuration
type ReportCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based report cache
func (f *ReportCacheFactory) CreateRedisCache() (pnl.ReportCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisReportCache(redisCfg, f.reportTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis report cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory report cache.
// WARNING: in-memory caches do not share invalidation across process
// instances; multi-instance deployments should use Redis.
func (f *ReportCacheFactory) CreateInMemoryCache() pnl.ReportCache {
	return NewInMemoryReportCache(
		WithReportTTL(f.reportTTL()),
		WithReportCacheLogger(f.logger),
	)
}

// CreateCache creates a report cache based on the configured backend.
// Reports are cheap to rebuild, so an unreachable Redis degrades to the
// in-memory cache instead of failing startup, unless fallback is disabled.
func (f *ReportCacheFactory) CreateCache() (pnl.ReportCache, error) {
	if !f.cacheConfig.Enabled {
		return nil, nil
	}

	if f.cacheConfig.Backend != "redis" {
		f.logger.Info("using in-memory report cache")
		return f.CreateInMemoryCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis report cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache. "+
		"Invalidation will not reach other instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}

// reportTTL returns the configured report TTL with a sane default
func (f *ReportCacheFactory) reportTTL() time.Duration {
	if f.cacheConfig.ReportTTL > 0 {
		return f.cacheConfig.ReportTTL
	}
	return defaultReportTTL
}
