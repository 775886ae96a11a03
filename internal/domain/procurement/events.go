package procurement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeSupplierOrder = "SupplierOrder"
	AggregateTypeGoodsReceipt  = "GoodsReceipt"
)

// Event type constants
const (
	EventTypeGoodsReceiptRecorded = "GoodsReceiptRecorded"
)

// GoodsReceiptRecordedEvent is raised after a receipt and its cost entries
// have been committed. Consumers invalidate cached P&L reports and update
// business metrics.
type GoodsReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	ReceiptID        uuid.UUID       `json:"receipt_id"`
	SupplierOrderID  uuid.UUID       `json:"supplier_order_id"`
	CustomerOrderID  *uuid.UUID      `json:"customer_order_id,omitempty"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	ReceivingStatus  ReceivingStatus `json:"receiving_status"`
	CostEntryCount   int             `json:"cost_entry_count"`
}

// NewGoodsReceiptRecordedEvent creates a new GoodsReceiptRecordedEvent
func NewGoodsReceiptRecordedEvent(receipt *GoodsReceipt, order *SupplierOrder, costEntryCount int) *GoodsReceiptRecordedEvent {
	return &GoodsReceiptRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeGoodsReceiptRecorded, AggregateTypeGoodsReceipt, receipt.ID),
		ReceiptID:        receipt.ID,
		SupplierOrderID:  order.ID,
		CustomerOrderID:  order.CustomerOrderID,
		ReceivedQuantity: receipt.TotalReceivedQuantity(),
		ReceivingStatus:  order.ReceivingStatus,
		CostEntryCount:   costEntryCount,
	}
}

// EventType returns the event type name
func (e *GoodsReceiptRecordedEvent) EventType() string {
	return EventTypeGoodsReceiptRecorded
}
