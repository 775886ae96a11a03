package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// ProductionOrder tracks one factory run for a customer order. The factory
// invoice recorded on it is the second cost channel next to the goods
// receipt ledger: the invoiced CMT amount, net of the VAT refund, burdens
// the order's P&L.
type ProductionOrder struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	StyleNumber     string          `gorm:"type:varchar(50);not null"`
	Color           string          `gorm:"type:varchar(50)"`
	FactoryName     string          `gorm:"type:varchar(200);not null"`
	OrderQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	// Factory invoice fields, zero until the invoice arrives
	InvoiceQuantity  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	InvoiceUnitPrice decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	InvoiceCurrency  valueobject.Currency `gorm:"type:varchar(3)"`
	InvoiceTotal     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	VATRefundRate    decimal.Decimal      `gorm:"type:decimal(8,4);not null"` // percentage
	InvoicedAt       *time.Time
	Remark           string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// NewProductionOrder creates a new production order for a factory run
func NewProductionOrder(orderNumber string, customerOrderID uuid.UUID, styleNumber, color, factoryName string, orderQuantity decimal.Decimal) (*ProductionOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer order ID cannot be empty")
	}
	if styleNumber == "" {
		return nil, shared.NewDomainError("INVALID_STYLE", "Style number cannot be empty")
	}
	if factoryName == "" {
		return nil, shared.NewDomainError("INVALID_FACTORY", "Factory name cannot be empty")
	}
	if orderQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Order quantity must be positive")
	}

	return &ProductionOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerOrderID:   customerOrderID,
		StyleNumber:       styleNumber,
		Color:             color,
		FactoryName:       factoryName,
		OrderQuantity:     orderQuantity,
		InvoiceQuantity:   decimal.Zero,
		InvoiceUnitPrice:  decimal.Zero,
		InvoiceTotal:      decimal.Zero,
		VATRefundRate:     decimal.Zero,
	}, nil
}

// RecordInvoice records the factory invoice against this run
func (p *ProductionOrder) RecordInvoice(quantity, unitPrice decimal.Decimal, currency valueobject.Currency, vatRefundRate decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Invoice quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Invoice unit price cannot be negative")
	}
	if currency == "" {
		return shared.NewDomainError("INVALID_CURRENCY", "Invoice currency cannot be empty")
	}
	if vatRefundRate.IsNegative() {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT refund rate cannot be negative")
	}

	now := time.Now()
	p.InvoiceQuantity = quantity
	p.InvoiceUnitPrice = unitPrice
	p.InvoiceCurrency = currency
	p.InvoiceTotal = quantity.Mul(unitPrice)
	p.VATRefundRate = vatRefundRate
	p.InvoicedAt = &now
	p.UpdatedAt = now
	return nil
}

// HasInvoice reports whether the factory invoice has been recorded
func (p *ProductionOrder) HasInvoice() bool {
	return p.InvoicedAt != nil
}

// InvoiceVAT returns the VAT refund breakdown of the factory invoice
func (p *ProductionOrder) InvoiceVAT() valueobject.VATBreakdown {
	return valueobject.ComputeVATRefund(p.InvoiceTotal, p.VATRefundRate, true)
}

// NetInvoiceCost returns the invoice cost net of the VAT refund, in the
// invoice currency
func (p *ProductionOrder) NetInvoiceCost() decimal.Decimal {
	return p.InvoiceVAT().Net
}

// NetInvoiceCostBase converts the net invoice cost to the base currency
func (p *ProductionOrder) NetInvoiceCostBase(rate valueobject.ExchangeRate) decimal.Decimal {
	return rate.ToBase(p.NetInvoiceCost())
}
