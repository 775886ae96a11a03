package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// SupplierType classifies what a supplier provides. The type decides
// which cost category received goods are booked under.
type SupplierType string

const (
	SupplierTypeFabricMill        SupplierType = "FABRIC_MILL"
	SupplierTypeTrimSupplier      SupplierType = "TRIM_SUPPLIER"
	SupplierTypeCMTFactory        SupplierType = "CMT_FACTORY"
	SupplierTypeWashingPlant      SupplierType = "WASHING_PLANT"
	SupplierTypeEmbellisher       SupplierType = "EMBELLISHER"
	SupplierTypePackagingSupplier SupplierType = "PACKAGING_SUPPLIER"
	SupplierTypeOther             SupplierType = "OTHER"
)

// IsValid checks if the value is a known supplier type
func (s SupplierType) IsValid() bool {
	switch s {
	case SupplierTypeFabricMill, SupplierTypeTrimSupplier, SupplierTypeCMTFactory,
		SupplierTypeWashingPlant, SupplierTypeEmbellisher, SupplierTypePackagingSupplier,
		SupplierTypeOther:
		return true
	}
	return false
}

// String returns the string representation of SupplierType
func (s SupplierType) String() string {
	return string(s)
}

// ReceivingStatus tracks how much of a supplier order has arrived
type ReceivingStatus string

const (
	ReceivingStatusNotReceived       ReceivingStatus = "NOT_RECEIVED"
	ReceivingStatusPartiallyReceived ReceivingStatus = "PARTIALLY_RECEIVED"
	ReceivingStatusFullyReceived     ReceivingStatus = "FULLY_RECEIVED"
)

// IsValid checks if the value is a known receiving status
func (s ReceivingStatus) IsValid() bool {
	switch s {
	case ReceivingStatusNotReceived, ReceivingStatusPartiallyReceived, ReceivingStatusFullyReceived:
		return true
	}
	return false
}

// String returns the string representation of ReceivingStatus
func (s ReceivingStatus) String() string {
	return string(s)
}

// DeriveReceivingStatus computes the receiving status from the cumulative
// received quantity and the total ordered quantity. Over-receipt counts as
// fully received. Because the received quantity is always recomputed by
// summing persisted receipt rows, and receipts never carry negative
// quantities, the derived status can only move forward.
func DeriveReceivingStatus(received, ordered decimal.Decimal) ReceivingStatus {
	if received.LessThanOrEqual(decimal.Zero) {
		return ReceivingStatusNotReceived
	}
	if received.GreaterThanOrEqual(ordered) {
		return ReceivingStatusFullyReceived
	}
	return ReceivingStatusPartiallyReceived
}

// SupplierOrderLineItem represents one position on a supplier purchase order.
// OrderLineItemID links the position to the customer-order line its cost
// should be allocated to; nil means the cost lands at order level.
type SupplierOrderLineItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	SupplierOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description     string          `gorm:"type:varchar(200);not null"`
	Color           string          `gorm:"type:varchar(50)"`
	OrderedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit            string          `gorm:"type:varchar(20)"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"` // in the supplier order currency
	VATRate         decimal.Decimal `gorm:"type:decimal(8,4);not null"`  // percentage, e.g. 13 for 13%
	VATRefundable   bool            `gorm:"not null;default:false"`
	OrderLineItemID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierOrderLineItem) TableName() string {
	return "supplier_order_line_items"
}

// NewSupplierOrderLineItem creates a new supplier order line item
func NewSupplierOrderLineItem(supplierOrderID uuid.UUID, description, color, unit string, orderedQuantity, unitPrice, vatRate decimal.Decimal, vatRefundable bool, orderLineItemID *uuid.UUID) (*SupplierOrderLineItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if orderedQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if vatRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}

	now := time.Now()
	return &SupplierOrderLineItem{
		ID:              uuid.New(),
		SupplierOrderID: supplierOrderID,
		Description:     description,
		Color:           color,
		OrderedQuantity: orderedQuantity,
		Unit:            unit,
		UnitPrice:       unitPrice,
		VATRate:         vatRate,
		VATRefundable:   vatRefundable,
		OrderLineItemID: orderLineItemID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SupplierOrder is the aggregate root for a purchase order placed with a
// fabric mill, trim supplier, CMT factory or other vendor. Receiving
// against it produces goods receipts and, through allocation, cost ledger
// entries on the linked customer order.
type SupplierOrder struct {
	shared.BaseAggregateRoot
	OrderNumber     string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierName    string                  `gorm:"type:varchar(200);not null"`
	SupplierType    SupplierType            `gorm:"type:varchar(30);not null"`
	Currency        valueobject.Currency    `gorm:"type:varchar(3);not null"`
	CustomerOrderID *uuid.UUID              `gorm:"type:uuid;index"` // source of the exchange rate for foreign-currency orders
	Items           []SupplierOrderLineItem `gorm:"foreignKey:SupplierOrderID"`
	TotalAmount     decimal.Decimal         `gorm:"type:decimal(18,4);not null"` // Sum of ordered qty * unit price
	ReceivingStatus ReceivingStatus         `gorm:"type:varchar(30);not null"`
	OrderDate       time.Time               `gorm:"not null"`
	Remark          string                  `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SupplierOrder) TableName() string {
	return "supplier_orders"
}

// NewSupplierOrder creates a new supplier order
func NewSupplierOrder(orderNumber, supplierName string, supplierType SupplierType, currency valueobject.Currency, customerOrderID *uuid.UUID, orderDate time.Time) (*SupplierOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if !supplierType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_TYPE", "Unknown supplier type")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Order currency cannot be empty")
	}

	return &SupplierOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierName:      supplierName,
		SupplierType:      supplierType,
		Currency:          currency,
		CustomerOrderID:   customerOrderID,
		Items:             make([]SupplierOrderLineItem, 0),
		TotalAmount:       decimal.Zero,
		ReceivingStatus:   ReceivingStatusNotReceived,
		OrderDate:         orderDate,
	}, nil
}

// AddItem adds a new line item to the supplier order
// Not allowed once receiving has started
func (o *SupplierOrder) AddItem(description, color, unit string, orderedQuantity, unitPrice, vatRate decimal.Decimal, vatRefundable bool, orderLineItemID *uuid.UUID) (*SupplierOrderLineItem, error) {
	if o.ReceivingStatus != ReceivingStatusNotReceived {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items after receiving has started")
	}

	item, err := NewSupplierOrderLineItem(o.ID, description, color, unit, orderedQuantity, unitPrice, vatRate, vatRefundable, orderLineItemID)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return item, nil
}

// FindItem returns the line item with the given ID
func (o *SupplierOrder) FindItem(itemID uuid.UUID) (*SupplierOrderLineItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// ItemAt returns the line item at the given zero-based position.
// Used to resolve positional receiving input into line item references.
func (o *SupplierOrder) ItemAt(index int) (*SupplierOrderLineItem, bool) {
	if index < 0 || index >= len(o.Items) {
		return nil, false
	}
	return &o.Items[index], true
}

// TotalOrderedQuantity returns the sum of ordered quantities across all items
func (o *SupplierOrder) TotalOrderedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.OrderedQuantity)
	}
	return total
}

// RefreshReceivingStatus recomputes the receiving status from the
// cumulative received quantity across ALL persisted receipts. It returns
// true when the status changed. The status never moves backwards: a
// recompute that would downgrade it is rejected, since receipts are
// append-only and their sums can only grow.
func (o *SupplierOrder) RefreshReceivingStatus(cumulativeReceived decimal.Decimal) (bool, error) {
	if cumulativeReceived.IsNegative() {
		return false, shared.NewDomainError("INVALID_QUANTITY", "Cumulative received quantity cannot be negative")
	}

	next := DeriveReceivingStatus(cumulativeReceived, o.TotalOrderedQuantity())
	if next == o.ReceivingStatus {
		return false, nil
	}
	if rankReceivingStatus(next) < rankReceivingStatus(o.ReceivingStatus) {
		return false, shared.NewDomainError("INVALID_STATE",
			"Receiving status cannot move backwards from "+o.ReceivingStatus.String()+" to "+next.String())
	}

	o.ReceivingStatus = next
	o.UpdatedAt = time.Now()
	return true, nil
}

func rankReceivingStatus(s ReceivingStatus) int {
	switch s {
	case ReceivingStatusPartiallyReceived:
		return 1
	case ReceivingStatusFullyReceived:
		return 2
	}
	return 0
}

// recalculateTotals recomputes the order total from line items
func (o *SupplierOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.OrderedQuantity.Mul(item.UnitPrice))
	}
	o.TotalAmount = total
}
