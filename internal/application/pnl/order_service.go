package pnl

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/production"
	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
	"github.com/sewline/backend/internal/infrastructure/telemetry"
)

// Metrics receives business counters from the P&L services. A nil
// implementation is allowed.
type Metrics interface {
	RecordPnLComputation(ctx context.Context)
}

// OrderPnLService aggregates an order's revenue and its two cost channels
// (the receiving cost ledger and factory invoices) into a P&L view, in
// the company base currency.
type OrderPnLService struct {
	orders           order.CustomerOrderRepository
	invoices         order.CustomerInvoiceRepository
	costEntries      costing.OrderCostEntryRepository
	productionOrders production.ProductionOrderRepository
	baseCurrency     valueobject.Currency
	metrics          Metrics
	logger           *zap.Logger
}

// NewOrderPnLService creates a new order P&L service
func NewOrderPnLService(
	orders order.CustomerOrderRepository,
	invoices order.CustomerInvoiceRepository,
	costEntries costing.OrderCostEntryRepository,
	productionOrders production.ProductionOrderRepository,
	baseCurrency valueobject.Currency,
	metrics Metrics,
	logger *zap.Logger,
) *OrderPnLService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseCurrency == "" {
		baseCurrency = valueobject.DefaultCurrency
	}
	return &OrderPnLService{
		orders:           orders,
		invoices:         invoices,
		costEntries:      costEntries,
		productionOrders: productionOrders,
		baseCurrency:     baseCurrency,
		metrics:          metrics,
		logger:           logger,
	}
}

// GetOrderPnL returns the P&L of one customer order
func (s *OrderPnLService) GetOrderPnL(ctx context.Context, orderID uuid.UUID) (result *OrderPnL, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl", "order_report",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.ErrNotFound
	}

	invoices, err := s.invoices.FindIssuedByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	entries, err := s.costEntries.FindByCustomerOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	prods, err := s.productionOrders.FindByCustomerOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result = s.compute(o, invoices, entries, prods)
	if s.metrics != nil {
		s.metrics.RecordPnLComputation(ctx)
	}
	return result, nil
}

// compute builds the P&L from pre-loaded data. Shared with the period
// roll-up service, which loads orders in bulk.
func (s *OrderPnLService) compute(o *order.CustomerOrder, invoices []order.CustomerInvoice, entries []costing.OrderCostEntry, prods []production.ProductionOrder) *OrderPnL {
	orderRate := s.orderRate(o)

	estRevenue := orderRate.ToBase(o.TotalAmount)

	orderCosts := decimal.Zero
	vatRefund := decimal.Zero
	for _, e := range entries {
		orderCosts = orderCosts.Add(e.TotalCostBase)
		vatRefund = vatRefund.Add(e.VATRefundBase())
	}

	prodCosts := decimal.Zero
	for i := range prods {
		p := &prods[i]
		if !p.HasInvoice() {
			continue
		}
		rate := s.costRate(o, p.InvoiceCurrency)
		prodCosts = prodCosts.Add(p.NetInvoiceCostBase(rate))
		vatRefund = vatRefund.Add(rate.ToBase(p.InvoiceVAT().Refund))
	}

	netCosts := orderCosts.Add(prodCosts)
	estProfit := estRevenue.Sub(netCosts)

	result := &OrderPnL{
		OrderID:             o.ID,
		OrderNumber:         o.OrderNumber,
		CustomerName:        o.CustomerName,
		Currency:            o.Currency,
		ShippingTerms:       o.ShippingTerms,
		EstimatedRevenue:    estRevenue,
		OrderCostTotal:      orderCosts,
		ProductionCostTotal: prodCosts,
		VATRefundTotal:      vatRefund,
		NetCosts:            netCosts,
		EstimatedProfit:     estProfit,
		EstimatedMargin:     marginOf(estProfit, estRevenue),
	}

	actRevenue := decimal.Zero
	hasActual := false
	for i := range invoices {
		inv := &invoices[i]
		if !inv.Status.CountsAsRevenue() {
			continue
		}
		hasActual = true
		actRevenue = actRevenue.Add(s.costRate(o, inv.Currency).ToBase(inv.TotalAmount))
	}

	if hasActual {
		actProfit := actRevenue.Sub(netCosts)
		actMargin := marginOf(actProfit, actRevenue)
		variance := actRevenue.Sub(estRevenue)

		result.IsActual = true
		result.ActualRevenue = &actRevenue
		result.ActualProfit = &actProfit
		result.ActualMargin = &actMargin
		result.RevenueVariance = &variance
	}

	return result
}

// GetOrderPnLByColor returns the order P&L broken down per line-item
// color. Order-level ledger entries that are not tied to any line item
// are reported in a dedicated UNALLOCATED bucket.
func (s *OrderPnLService) GetOrderPnLByColor(ctx context.Context, orderID uuid.UUID) (*OrderPnLByColor, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.ErrNotFound
	}

	entries, err := s.costEntries.FindByCustomerOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	prods, err := s.productionOrders.FindByCustomerOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	orderRate := s.orderRate(o)

	// colors in line-item order, UNALLOCATED last
	var colorOrder []string
	buckets := make(map[string]*ColorPnL)
	bucket := func(color string) *ColorPnL {
		if b, ok := buckets[color]; ok {
			return b
		}
		b := &ColorPnL{
			Color:    color,
			Quantity: decimal.Zero,
			Revenue:  decimal.Zero,
			Costs:    decimal.Zero,
		}
		buckets[color] = b
		colorOrder = append(colorOrder, color)
		return b
	}

	lineColors := make(map[uuid.UUID]string)
	for _, item := range o.Items {
		b := bucket(item.Color)
		b.Quantity = b.Quantity.Add(item.Quantity)
		b.Revenue = b.Revenue.Add(orderRate.ToBase(item.LineTotal))
		lineColors[item.ID] = item.Color
	}

	for _, e := range entries {
		color := UnallocatedColor
		if e.OrderLineItemID != nil {
			if c, ok := lineColors[*e.OrderLineItemID]; ok {
				color = c
			}
		}
		b := bucket(color)
		b.Costs = b.Costs.Add(e.TotalCostBase)
	}

	for i := range prods {
		p := &prods[i]
		if !p.HasInvoice() {
			continue
		}
		color := p.Color
		if _, ok := buckets[color]; !ok {
			color = UnallocatedColor
		}
		rate := s.costRate(o, p.InvoiceCurrency)
		bucket(color).Costs = bucket(color).Costs.Add(p.NetInvoiceCostBase(rate))
	}

	colors := make([]ColorPnL, 0, len(colorOrder))
	var unallocated *ColorPnL
	for _, c := range colorOrder {
		b := buckets[c]
		b.Profit = b.Revenue.Sub(b.Costs)
		b.Margin = marginOf(b.Profit, b.Revenue)
		if c == UnallocatedColor {
			unallocated = b
			continue
		}
		colors = append(colors, *b)
	}
	if unallocated != nil {
		colors = append(colors, *unallocated)
	}

	if s.metrics != nil {
		s.metrics.RecordPnLComputation(ctx)
	}

	return &OrderPnLByColor{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Colors:      colors,
	}, nil
}

// orderRate returns the order's exchange rate into the base currency,
// falling back to 1 when the order carries an unusable rate
func (s *OrderPnLService) orderRate(o *order.CustomerOrder) valueobject.ExchangeRate {
	rate, err := o.RateToBase(s.baseCurrency)
	if err != nil {
		s.logger.Warn("order has no usable exchange rate, using 1",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return valueobject.IdentityRate(s.baseCurrency)
	}
	return rate
}

// costRate returns the rate for converting an amount in the given
// currency against the order: identity for base-currency amounts, the
// order's agreed rate when the currency matches the order currency, and
// 1 otherwise
func (s *OrderPnLService) costRate(o *order.CustomerOrder, currency valueobject.Currency) valueobject.ExchangeRate {
	if currency == s.baseCurrency || currency == "" {
		return valueobject.IdentityRate(s.baseCurrency)
	}
	if currency == o.Currency {
		return s.orderRate(o)
	}
	s.logger.Warn("no exchange rate for currency, using 1",
		zap.String("order_id", o.ID.String()),
		zap.String("currency", string(currency)))
	rate, err := valueobject.NewExchangeRate(currency, s.baseCurrency, decimal.NewFromInt(1))
	if err != nil {
		return valueobject.IdentityRate(s.baseCurrency)
	}
	return rate
}

// marginOf returns profit/revenue as a percentage. A zero revenue yields
// a zero margin so the result is always finite.
func marginOf(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(decimal.NewFromInt(100))
}
