package pnl

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// OrderPnL is the profit and loss view of one customer order. All amounts
// are in the company base currency. The Act* fields are present only when
// at least one invoice has been issued against the order; until then the
// order is valued at its estimated revenue.
type OrderPnL struct {
	OrderID             uuid.UUID            `json:"order_id"`
	OrderNumber         string               `json:"order_number"`
	CustomerName        string               `json:"customer_name"`
	Currency            valueobject.Currency `json:"currency"`
	ShippingTerms       order.ShippingTerms  `json:"shipping_terms"`
	IsActual            bool                 `json:"is_actual"`
	EstimatedRevenue    decimal.Decimal      `json:"estimated_revenue"`
	ActualRevenue       *decimal.Decimal     `json:"actual_revenue,omitempty"`
	OrderCostTotal      decimal.Decimal      `json:"order_cost_total"`
	ProductionCostTotal decimal.Decimal      `json:"production_cost_total"`
	VATRefundTotal      decimal.Decimal      `json:"vat_refund_total"`
	NetCosts            decimal.Decimal      `json:"net_costs"`
	EstimatedProfit     decimal.Decimal      `json:"estimated_profit"`
	ActualProfit        *decimal.Decimal     `json:"actual_profit,omitempty"`
	EstimatedMargin     decimal.Decimal      `json:"estimated_margin"`
	ActualMargin        *decimal.Decimal     `json:"actual_margin,omitempty"`
	RevenueVariance     *decimal.Decimal     `json:"revenue_variance,omitempty"`
}

// UnallocatedColor is the bucket name for order-level costs that are not
// tied to any line item color
const UnallocatedColor = "UNALLOCATED"

// ColorPnL is the per-color drill-down row of an order's P&L
type ColorPnL struct {
	Color    string          `json:"color"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Costs    decimal.Decimal `json:"costs"`
	Profit   decimal.Decimal `json:"profit"`
	Margin   decimal.Decimal `json:"margin"`
}

// OrderPnLByColor is the color-level variant of the order P&L
type OrderPnLByColor struct {
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	Colors      []ColorPnL `json:"colors"`
}

// PnLTotals is one aggregated P&L row. Period buckets and the report grand
// total share this shape. Estimated figures sum over every order in the
// bucket; actual figures sum only over orders with issued invoices, so the
// estimated total is never overwritten by actuals and the two remain
// independently additive across buckets.
type PnLTotals struct {
	EstimatedRevenue decimal.Decimal `json:"estimated_revenue"`
	ActualRevenue    decimal.Decimal `json:"actual_revenue"`
	Costs            decimal.Decimal `json:"total_costs"`
	VATRefund        decimal.Decimal `json:"vat_refund"`
	EstimatedProfit  decimal.Decimal `json:"estimated_profit"`
	ActualProfit     decimal.Decimal `json:"actual_profit"`
	EstimatedMargin  decimal.Decimal `json:"estimated_margin"`
	ActualMargin     decimal.Decimal `json:"actual_margin"`
	OrderCount       int             `json:"order_count"`
	ActualCount      int             `json:"actual_count"` // orders with issued invoices
}

// PeriodBucket is one reporting period with its orders and totals
type PeriodBucket struct {
	PeriodKey string     `json:"period_key"`
	Label     string     `json:"label"`
	Orders    []OrderPnL `json:"orders"`
	Totals    PnLTotals  `json:"totals"`
}

// PeriodPnLReport is the period roll-up: buckets ordered by period key
// plus a grand total row of the same shape as the bucket totals
type PeriodPnLReport struct {
	Granularity Granularity    `json:"granularity"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	Periods     []PeriodBucket `json:"periods"`
	Totals      PnLTotals      `json:"totals"`
}
