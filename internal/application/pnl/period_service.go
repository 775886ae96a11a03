package pnl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/production"
	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/infrastructure/telemetry"
)

// PeriodPnLService rolls order P&Ls up into reporting periods. Each order
// lands in exactly one period, chosen by its anchor date: the ship-by date
// for FOB and CIF orders, the in-house date for DDP and EXW orders, with
// the order date as fallback.
type PeriodPnLService struct {
	orders           order.CustomerOrderRepository
	invoices         order.CustomerInvoiceRepository
	costEntries      costing.OrderCostEntryRepository
	productionOrders production.ProductionOrderRepository
	orderService     *OrderPnLService
	cache            ReportCache
	logger           *zap.Logger
}

// NewPeriodPnLService creates a new period P&L service. The cache may be nil.
func NewPeriodPnLService(
	orders order.CustomerOrderRepository,
	invoices order.CustomerInvoiceRepository,
	costEntries costing.OrderCostEntryRepository,
	productionOrders production.ProductionOrderRepository,
	orderService *OrderPnLService,
	cache ReportCache,
	logger *zap.Logger,
) *PeriodPnLService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodPnLService{
		orders:           orders,
		invoices:         invoices,
		costEntries:      costEntries,
		productionOrders: productionOrders,
		orderService:     orderService,
		cache:            cache,
		logger:           logger,
	}
}

// GetPeriodPnL builds the P&L report for [start, end) at the given
// granularity. Orders without any activity in the range simply do not
// appear; periods without orders are omitted rather than zero-filled.
func (s *PeriodPnLService) GetPeriodPnL(ctx context.Context, start, end time.Time, granularity Granularity) (report *PeriodPnLReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl", "period_report",
		telemetry.WithAttribute(telemetry.SpanAttrGranularity, string(granularity)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if !granularity.IsValid() {
		return nil, shared.NewDomainError("INVALID_GRANULARITY",
			"Granularity must be MONTHLY, QUARTERLY or ANNUAL")
	}
	if !start.Before(end) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Start date must be before end date")
	}

	cacheKey := fmt.Sprintf("pnl:period:%s:%s:%s",
		granularity, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	candidates, err := s.orders.FindByAnchorCandidates(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// The repository returns a superset; keep only orders whose resolved
	// anchor date actually falls in the range.
	var inRange []*order.CustomerOrder
	var orderIDs []uuid.UUID
	for i := range candidates {
		o := &candidates[i]
		anchor := o.AnchorDate()
		if anchor.Before(start) || !anchor.Before(end) {
			continue
		}
		inRange = append(inRange, o)
		orderIDs = append(orderIDs, o.ID)
	}

	report = &PeriodPnLReport{
		Granularity: granularity,
		Start:       start.Format("2006-01-02"),
		End:         end.Format("2006-01-02"),
		Periods:     []PeriodBucket{},
	}

	if len(inRange) == 0 {
		s.storeInCache(ctx, cacheKey, report)
		return report, nil
	}

	invoicesByOrder, entriesByOrder, prodsByOrder, err := s.loadOrderData(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	bucketIndex := make(map[string]int)
	for _, o := range inRange {
		pnl := s.orderService.compute(o,
			invoicesByOrder[o.ID], entriesByOrder[o.ID], prodsByOrder[o.ID])

		anchor := o.AnchorDate()
		key := granularity.PeriodKey(anchor)
		idx, ok := bucketIndex[key]
		if !ok {
			idx = len(report.Periods)
			bucketIndex[key] = idx
			report.Periods = append(report.Periods, PeriodBucket{
				PeriodKey: key,
				Label:     granularity.PeriodLabel(anchor),
			})
		}
		b := &report.Periods[idx]
		b.Orders = append(b.Orders, *pnl)
		addToTotals(&b.Totals, pnl)
		addToTotals(&report.Totals, pnl)
	}

	sort.Slice(report.Periods, func(i, j int) bool {
		return report.Periods[i].PeriodKey < report.Periods[j].PeriodKey
	})
	for i := range report.Periods {
		b := &report.Periods[i]
		sort.Slice(b.Orders, func(x, y int) bool {
			return b.Orders[x].OrderNumber < b.Orders[y].OrderNumber
		})
		b.Totals.EstimatedMargin = marginOf(b.Totals.EstimatedProfit, b.Totals.EstimatedRevenue)
		b.Totals.ActualMargin = marginOf(b.Totals.ActualProfit, b.Totals.ActualRevenue)
	}
	report.Totals.EstimatedMargin = marginOf(report.Totals.EstimatedProfit, report.Totals.EstimatedRevenue)
	report.Totals.ActualMargin = marginOf(report.Totals.ActualProfit, report.Totals.ActualRevenue)

	if s.orderService.metrics != nil {
		s.orderService.metrics.RecordPnLComputation(ctx)
	}
	s.storeInCache(ctx, cacheKey, report)
	return report, nil
}

// loadOrderData bulk-loads invoices, ledger entries and production orders
// for the given orders and groups them by customer order ID
func (s *PeriodPnLService) loadOrderData(ctx context.Context, orderIDs []uuid.UUID) (
	map[uuid.UUID][]order.CustomerInvoice,
	map[uuid.UUID][]costing.OrderCostEntry,
	map[uuid.UUID][]production.ProductionOrder,
	error,
) {
	invoices, err := s.invoices.FindIssuedByOrders(ctx, orderIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	entries, err := s.costEntries.FindByCustomerOrders(ctx, orderIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	prods, err := s.productionOrders.FindByCustomerOrders(ctx, orderIDs)
	if err != nil {
		return nil, nil, nil, err
	}

	invoicesByOrder := make(map[uuid.UUID][]order.CustomerInvoice)
	for _, inv := range invoices {
		invoicesByOrder[inv.CustomerOrderID] = append(invoicesByOrder[inv.CustomerOrderID], inv)
	}
	entriesByOrder := make(map[uuid.UUID][]costing.OrderCostEntry)
	for _, e := range entries {
		entriesByOrder[e.CustomerOrderID] = append(entriesByOrder[e.CustomerOrderID], e)
	}
	prodsByOrder := make(map[uuid.UUID][]production.ProductionOrder)
	for _, p := range prods {
		prodsByOrder[p.CustomerOrderID] = append(prodsByOrder[p.CustomerOrderID], p)
	}
	return invoicesByOrder, entriesByOrder, prodsByOrder, nil
}

func (s *PeriodPnLService) storeInCache(ctx context.Context, key string, report *PeriodPnLReport) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, report); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// addToTotals folds one order P&L into a totals row. Every order
// contributes its estimated revenue and profit; only orders with issued
// invoices additionally contribute to the actual figures, keeping the two
// series separately additive.
func addToTotals(t *PnLTotals, p *OrderPnL) {
	t.EstimatedRevenue = t.EstimatedRevenue.Add(p.EstimatedRevenue)
	t.Costs = t.Costs.Add(p.NetCosts)
	t.VATRefund = t.VATRefund.Add(p.VATRefundTotal)
	t.EstimatedProfit = t.EstimatedProfit.Add(p.EstimatedProfit)
	t.OrderCount++
	if p.IsActual {
		t.ActualCount++
		if p.ActualRevenue != nil {
			t.ActualRevenue = t.ActualRevenue.Add(*p.ActualRevenue)
		}
		if p.ActualProfit != nil {
			t.ActualProfit = t.ActualProfit.Add(*p.ActualProfit)
		}
	}
}
