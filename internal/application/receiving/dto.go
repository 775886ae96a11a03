package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/procurement"
)

// ReceivingItemRequest describes one received position. The position can
// reference the ordered line either explicitly by LineItemID or, for
// clients that send receipt rows in order-sheet order, positionally by
// LineIndex. Positional references are resolved to line item IDs once, at
// ingest, and only the resolved ID is persisted.
type ReceivingItemRequest struct {
	LineItemID       *uuid.UUID       `json:"line_item_id,omitempty"`
	LineIndex        *int             `json:"line_index,omitempty"`
	Description      string           `json:"description"`
	Color            string           `json:"color,omitempty"`
	Unit             string           `json:"unit,omitempty"`
	ReceivedQuantity decimal.Decimal  `json:"received_quantity"`
	ActualUnitPrice  *decimal.Decimal `json:"actual_unit_price,omitempty"`
	QCResult         string           `json:"qc_result,omitempty"`
}

// RecordReceivingRequest is the input for recording one goods receipt
type RecordReceivingRequest struct {
	ReceivedDate *time.Time             `json:"received_date,omitempty"`
	ReceivedBy   string                 `json:"received_by,omitempty"`
	Remark       string                 `json:"remark,omitempty"`
	Items        []ReceivingItemRequest `json:"items"`
}

// RecordReceivingResponse reports the outcome of a receiving operation
type RecordReceivingResponse struct {
	ReceiptID          uuid.UUID                   `json:"receipt_id"`
	SupplierOrderID    uuid.UUID                   `json:"supplier_order_id"`
	ReceivingStatus    procurement.ReceivingStatus `json:"receiving_status"`
	ReceivedQuantity   decimal.Decimal             `json:"received_quantity"`
	CumulativeReceived decimal.Decimal             `json:"cumulative_received"`
	CostEntriesBooked  int                         `json:"cost_entries_booked"`
	SkippedUnpriced    int                         `json:"skipped_unpriced"`
	DroppedUnmapped    int                         `json:"dropped_unmapped"`
}
