package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sewline/backend/internal/application/pnl"
)

const (
	// defaultReportTTL bounds how stale a cached report may get even if
	// invalidation events are lost
	defaultReportTTL = 10 * time.Minute

	reportCleanupInterval = 30 * time.Second
)

// InMemoryReportCache implements pnl.ReportCache using in-memory storage.
// Suitable for single-instance deployments; multi-instance deployments
// should use the Redis cache so invalidation reaches every instance.
type InMemoryReportCache struct {
	reports sync.Map // map[string]*reportEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// reportEntry wraps a cached report with its expiration time
type reportEntry struct {
	report    *pnl.PeriodPnLReport
	expiresAt time.Time
}

func (e *reportEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryReportCacheOption is a functional option for configuring the cache
type InMemoryReportCacheOption func(*InMemoryReportCache)

// WithReportTTL sets the report expiration time
func WithReportTTL(ttl time.Duration) InMemoryReportCacheOption {
	return func(c *InMemoryReportCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithReportCacheLogger sets the logger for the cache
func WithReportCacheLogger(logger *zap.Logger) InMemoryReportCacheOption {
	return func(c *InMemoryReportCache) {
		c.logger = logger
	}
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache(opts ...InMemoryReportCacheOption) *InMemoryReportCache {
	cache := &InMemoryReportCache{
		ttl:    defaultReportTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached report. A miss returns nil without error.
func (c *InMemoryReportCache) Get(ctx context.Context, key string) (*pnl.PeriodPnLReport, error) {
	if value, ok := c.reports.Load(key); ok {
		entry := value.(*reportEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("report cache hit", zap.String("key", key))
			return entry.report, nil
		}
		// Expired, remove from cache
		c.reports.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("report cache miss", zap.String("key", key))
	return nil, nil
}

// Set stores a report in the cache
func (c *InMemoryReportCache) Set(ctx context.Context, key string, report *pnl.PeriodPnLReport) error {
	if report == nil {
		return nil
	}

	c.reports.Store(key, &reportEntry{
		report:    report,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.logger.Debug("cached report",
		zap.String("key", key),
		zap.Duration("ttl", c.ttl))
	return nil
}

// InvalidateAll removes all cached reports
func (c *InMemoryReportCache) InvalidateAll(ctx context.Context) error {
	var removed int
	c.reports.Range(func(key, _ any) bool {
		c.reports.Delete(key)
		removed++
		return true
	})

	c.logger.Debug("invalidated report cache", zap.Int("removed", removed))
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryReportCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryReportCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of cached reports
func (c *InMemoryReportCache) Count() int {
	count := 0
	c.reports.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryReportCache) cleanupExpired() {
	ticker := time.NewTicker(reportCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.reports.Range(func(key, value any) bool {
				if value.(*reportEntry).isExpired() {
					c.reports.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryReportCache implements pnl.ReportCache
var _ pnl.ReportCache = (*InMemoryReportCache)(nil)
