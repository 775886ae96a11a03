package pnl

import "context"

// ReportCache caches computed period P&L reports. Get returns nil on a
// miss. Implementations are expected to fail soft: the report services
// treat any cache error as a miss.
type ReportCache interface {
	Get(ctx context.Context, key string) (*PeriodPnLReport, error)
	Set(ctx context.Context, key string, report *PeriodPnLReport) error
	// InvalidateAll drops every cached report. Called whenever an event
	// changes the numbers feeding any report.
	InvalidateAll(ctx context.Context) error
}
