package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// OrderCostEntry is one row in the order cost ledger. The ledger is
// append-only: entries are never edited or deleted, corrections are booked
// as new entries. OrderLineItemID is nil for costs that could not be tied
// to a specific style/color position (order-level, "unallocated" costs).
type OrderCostEntry struct {
	shared.BaseEntity
	CustomerOrderID uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderLineItemID *uuid.UUID           `gorm:"type:uuid;index"`
	Category        CostCategory         `gorm:"type:varchar(20);not null"`
	Description     string               `gorm:"type:varchar(200)"`
	SupplierName    string               `gorm:"type:varchar(200)"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`    // original currency of the cost
	TotalCost       decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // net cost in the original currency
	ExchangeRate    decimal.Decimal      `gorm:"type:decimal(18,6);not null"` // rate used for base conversion
	TotalCostBase   decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // net cost in the base currency
	VATRefund       decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // refund amount in the original currency
	Note            string               `gorm:"type:varchar(500)"`           // audit trail: VAT detail, FX fallback
	SupplierOrderID *uuid.UUID           `gorm:"type:uuid;index"`
	GoodsReceiptID  *uuid.UUID           `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (OrderCostEntry) TableName() string {
	return "order_cost_entries"
}

// NewOrderCostEntry creates a new cost ledger entry
func NewOrderCostEntry(customerOrderID uuid.UUID, orderLineItemID *uuid.UUID, category CostCategory, description, supplierName string, currency valueobject.Currency, totalCost decimal.Decimal, rate valueobject.ExchangeRate, vatRefund decimal.Decimal, note string) (*OrderCostEntry, error) {
	if customerOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer order ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown cost category")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Cost currency cannot be empty")
	}

	return &OrderCostEntry{
		BaseEntity:      shared.NewBaseEntity(),
		CustomerOrderID: customerOrderID,
		OrderLineItemID: orderLineItemID,
		Category:        category,
		Description:     description,
		SupplierName:    supplierName,
		Currency:        currency,
		TotalCost:       totalCost,
		ExchangeRate:    rate.Rate(),
		TotalCostBase:   rate.ToBase(totalCost),
		VATRefund:       vatRefund,
		Note:            note,
	}, nil
}

// IsUnallocated reports whether the entry sits at order level rather than
// on a specific line item
func (e *OrderCostEntry) IsUnallocated() bool {
	return e.OrderLineItemID == nil
}

// VATRefundBase returns the VAT refund converted to the base currency
func (e *OrderCostEntry) VATRefundBase() decimal.Decimal {
	return e.VATRefund.Mul(e.ExchangeRate)
}
