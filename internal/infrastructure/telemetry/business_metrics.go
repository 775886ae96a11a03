// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the cost allocation engine.
// It tracks goods receipts, cost ledger growth and P&L report computations.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	goodsReceiptTotal   *Counter
	costEntryTotal      *Counter
	pnlComputationTotal *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.goodsReceiptTotal, err = NewCounter(
		cfg.Meter,
		"sewline_goods_receipt_total",
		"Total number of goods receipts recorded",
		"{receipts}",
	)
	if err != nil {
		return nil, err
	}

	bm.costEntryTotal, err = NewCounter(
		cfg.Meter,
		"sewline_cost_entry_total",
		"Total number of cost ledger entries booked",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	bm.pnlComputationTotal, err = NewCounter(
		cfg.Meter,
		"sewline_pnl_computation_total",
		"Total number of order P&L computations",
		"{computations}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordGoodsReceipt records one goods receipt and the number of cost
// ledger entries it produced. Called from the receiving flow after the
// transaction commits.
func (bm *BusinessMetrics) RecordGoodsReceipt(ctx context.Context, costEntries int) {
	bm.goodsReceiptTotal.Inc(ctx)
	if costEntries > 0 {
		bm.costEntryTotal.Add(ctx, int64(costEntries))
	}
}

// RecordPnLComputation records one order P&L computation
func (bm *BusinessMetrics) RecordPnLComputation(ctx context.Context) {
	bm.pnlComputationTotal.Inc(ctx)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
