package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewline/backend/internal/application/pnl"
)

func testReport(key string) *pnl.PeriodPnLReport {
	return &pnl.PeriodPnLReport{
		Granularity: pnl.GranularityMonthly,
		Start:       "2026-03-01",
		End:         "2026-04-01",
		Periods:     []pnl.PeriodBucket{},
	}
}

func TestInMemoryReportCache_GetSet(t *testing.T) {
	t.Run("miss returns nil without error", func(t *testing.T) {
		cache := NewInMemoryReportCache()
		defer cache.Close()

		report, err := cache.Get(context.Background(), "pnl:period:MONTHLY:2026-03-01:2026-04-01")

		assert.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("set then get returns the same report", func(t *testing.T) {
		cache := NewInMemoryReportCache()
		defer cache.Close()

		key := "pnl:period:MONTHLY:2026-03-01:2026-04-01"
		stored := testReport(key)

		err := cache.Set(context.Background(), key, stored)
		require.NoError(t, err)

		got, err := cache.Get(context.Background(), key)

		assert.NoError(t, err)
		assert.Same(t, stored, got)
	})

	t.Run("setting nil report is a no-op", func(t *testing.T) {
		cache := NewInMemoryReportCache()
		defer cache.Close()

		err := cache.Set(context.Background(), "key", nil)

		assert.NoError(t, err)
		assert.Equal(t, 0, cache.Count())
	})

	t.Run("expired entries are treated as misses", func(t *testing.T) {
		cache := NewInMemoryReportCache(WithReportTTL(time.Millisecond))
		defer cache.Close()

		key := "pnl:period:MONTHLY:2026-03-01:2026-04-01"
		require.NoError(t, cache.Set(context.Background(), key, testReport(key)))

		time.Sleep(5 * time.Millisecond)

		got, err := cache.Get(context.Background(), key)

		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestInMemoryReportCache_InvalidateAll(t *testing.T) {
	t.Run("removes every cached report", func(t *testing.T) {
		cache := NewInMemoryReportCache()
		defer cache.Close()

		ctx := context.Background()
		require.NoError(t, cache.Set(ctx, "a", testReport("a")))
		require.NoError(t, cache.Set(ctx, "b", testReport("b")))
		require.Equal(t, 2, cache.Count())

		err := cache.InvalidateAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, cache.Count())

		got, err := cache.Get(ctx, "a")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestInMemoryReportCache_Stats(t *testing.T) {
	t.Run("tracks hits and misses", func(t *testing.T) {
		cache := NewInMemoryReportCache()
		defer cache.Close()

		ctx := context.Background()
		key := "stats-key"
		require.NoError(t, cache.Set(ctx, key, testReport(key)))

		_, _ = cache.Get(ctx, key)
		_, _ = cache.Get(ctx, "unknown")

		hits, misses := cache.GetStats()
		assert.Equal(t, int64(1), hits)
		assert.Equal(t, int64(1), misses)
	})
}
