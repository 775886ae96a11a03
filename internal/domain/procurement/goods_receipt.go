package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
)

// QCResult records the quality control outcome for a received item
type QCResult string

const (
	QCResultPending QCResult = "PENDING"
	QCResultPassed  QCResult = "PASSED"
	QCResultFailed  QCResult = "FAILED"
)

// IsValid checks if the value is a known QC result
func (q QCResult) IsValid() bool {
	switch q {
	case QCResultPending, QCResultPassed, QCResultFailed:
		return true
	}
	return false
}

// GoodsReceiptItem records one received position. SupplierOrderLineItemID
// references the ordered line this delivery fulfils; nil means the delivery
// could not be matched to any ordered line. ActualUnitPrice is the price the
// supplier actually invoiced; nil means the goods arrived uncosted and no
// ledger entry is booked for them yet.
type GoodsReceiptItem struct {
	ID                      uuid.UUID        `gorm:"type:uuid;primary_key"`
	GoodsReceiptID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	SupplierOrderLineItemID *uuid.UUID       `gorm:"type:uuid;index"`
	Description             string           `gorm:"type:varchar(200)"`
	Color                   string           `gorm:"type:varchar(50)"`
	OrderedQuantity         decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // snapshot at receiving time
	ReceivedQuantity        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Unit                    string           `gorm:"type:varchar(20)"`
	ActualUnitPrice         *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ActualLineTotal         *decimal.Decimal `gorm:"type:decimal(18,4)"` // ReceivedQuantity * ActualUnitPrice
	QCResult                QCResult         `gorm:"type:varchar(10);not null"`
	CreatedAt               time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GoodsReceiptItem) TableName() string {
	return "goods_receipt_items"
}

// GrossCost returns the cost of this received item in the supplier order
// currency. Only the actual invoiced price counts: an item with no actual
// price (or an actual line total of zero or less) has no cost to book and
// the second return value is false. The ordered price is never a substitute.
func (i *GoodsReceiptItem) GrossCost() (decimal.Decimal, bool) {
	if i.ActualLineTotal != nil {
		if i.ActualLineTotal.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, false
		}
		return *i.ActualLineTotal, true
	}
	if i.ActualUnitPrice == nil || i.ActualUnitPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	gross := i.ReceivedQuantity.Mul(*i.ActualUnitPrice)
	if gross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return gross, true
}

// GoodsReceipt is the aggregate root for one physical delivery against a
// supplier order. Receipts are append-only: a wrong receipt is corrected
// by recording a new one, never by editing history.
type GoodsReceipt struct {
	shared.BaseAggregateRoot
	SupplierOrderID uuid.UUID          `gorm:"type:uuid;not null;index"`
	ReceivedDate    time.Time          `gorm:"not null"`
	ReceivedBy      string             `gorm:"type:varchar(100)"`
	Remark          string             `gorm:"type:varchar(500)"`
	Items           []GoodsReceiptItem `gorm:"foreignKey:GoodsReceiptID"`
}

// TableName returns the table name for GORM
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// NewGoodsReceipt creates a new goods receipt for a supplier order
func NewGoodsReceipt(supplierOrderID uuid.UUID, receivedDate time.Time, receivedBy, remark string) (*GoodsReceipt, error) {
	if supplierOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_ORDER", "Supplier order ID cannot be empty")
	}
	if receivedDate.IsZero() {
		receivedDate = time.Now()
	}

	return &GoodsReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierOrderID:   supplierOrderID,
		ReceivedDate:      receivedDate,
		ReceivedBy:        receivedBy,
		Remark:            remark,
		Items:             make([]GoodsReceiptItem, 0),
	}, nil
}

// AddItem records one received position on the receipt
func (r *GoodsReceipt) AddItem(lineItemID *uuid.UUID, description, color, unit string, orderedQuantity, receivedQuantity decimal.Decimal, actualUnitPrice *decimal.Decimal, qcResult QCResult) (*GoodsReceiptItem, error) {
	if receivedQuantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
	}
	if actualUnitPrice != nil && actualUnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Actual unit price cannot be negative")
	}
	if qcResult == "" {
		qcResult = QCResultPending
	}
	if !qcResult.IsValid() {
		return nil, shared.NewDomainError("INVALID_QC_RESULT", "Unknown QC result")
	}

	item := GoodsReceiptItem{
		ID:                      uuid.New(),
		GoodsReceiptID:          r.ID,
		SupplierOrderLineItemID: lineItemID,
		Description:             description,
		Color:                   color,
		OrderedQuantity:         orderedQuantity,
		ReceivedQuantity:        receivedQuantity,
		Unit:                    unit,
		ActualUnitPrice:         actualUnitPrice,
		QCResult:                qcResult,
		CreatedAt:               time.Now(),
	}
	if actualUnitPrice != nil {
		total := receivedQuantity.Mul(*actualUnitPrice)
		item.ActualLineTotal = &total
	}

	r.Items = append(r.Items, item)
	r.UpdatedAt = time.Now()
	return &r.Items[len(r.Items)-1], nil
}

// TotalReceivedQuantity returns the sum of received quantities on this receipt
func (r *GoodsReceipt) TotalReceivedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.ReceivedQuantity)
	}
	return total
}

// Validate checks the receipt is complete enough to persist
func (r *GoodsReceipt) Validate() error {
	if len(r.Items) == 0 {
		return shared.NewDomainError("EMPTY_RECEIPT", "A goods receipt must contain at least one item")
	}
	return nil
}
