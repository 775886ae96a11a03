package pnl

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/procurement"
	"github.com/sewline/backend/internal/domain/shared"
)

// CacheInvalidator drops cached P&L reports whenever an event changes the
// numbers behind them: a goods receipt books new ledger entries, an issued
// invoice flips an order from estimated to actual revenue.
type CacheInvalidator struct {
	cache     ReportCache
	processed shared.IdempotencyStore
	dedupeTTL time.Duration
	logger    *zap.Logger
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)

// CacheInvalidatorOption is a functional option for configuring the invalidator
type CacheInvalidatorOption func(*CacheInvalidator)

// WithIdempotencyStore enables event deduplication so a redelivered event
// does not trigger a second full cache sweep.
func WithIdempotencyStore(store shared.IdempotencyStore) CacheInvalidatorOption {
	return func(h *CacheInvalidator) {
		h.processed = store
	}
}

// NewCacheInvalidator creates a new cache invalidator
func NewCacheInvalidator(cache ReportCache, logger *zap.Logger, opts ...CacheInvalidatorOption) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &CacheInvalidator{
		cache:     cache,
		dedupeTTL: shared.DefaultIdempotencyConfig().TTL,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the event types this handler subscribes to
func (h *CacheInvalidator) EventTypes() []string {
	return []string{
		procurement.EventTypeGoodsReceiptRecorded,
		order.EventTypeCustomerInvoiceIssued,
	}
}

// Handle invalidates all cached reports. Invalidation is coarse: reports
// are cheap to rebuild and events that move the numbers are infrequent.
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.cache == nil {
		return nil
	}
	if h.processed != nil {
		fresh, err := h.processed.MarkProcessed(ctx, event.EventID().String(), h.dedupeTTL)
		if err != nil {
			// Fail open: a broken dedupe store must not stop invalidation
			h.logger.Warn("idempotency check failed, invalidating anyway",
				zap.String("event_id", event.EventID().String()),
				zap.Error(err))
		} else if !fresh {
			h.logger.Debug("event already processed, skipping invalidation",
				zap.String("event_id", event.EventID().String()))
			return nil
		}
	}
	if err := h.cache.InvalidateAll(ctx); err != nil {
		h.logger.Warn("failed to invalidate report cache",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	h.logger.Debug("report cache invalidated", zap.String("event_type", event.EventType()))
	return nil
}
