package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	receivingapp "github.com/sewline/backend/internal/application/receiving"
)

// JSON bindings carry quantities and prices as float64; the service
// layer works in decimals.
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// ReceivingHandler handles goods receipt API endpoints
type ReceivingHandler struct {
	BaseHandler
	service *receivingapp.Service
}

// NewReceivingHandler creates a new ReceivingHandler
func NewReceivingHandler(service *receivingapp.Service) *ReceivingHandler {
	return &ReceivingHandler{
		service: service,
	}
}

// GoodsReceiptItemInput represents one received position
// @Description Received item for a goods receipt
type GoodsReceiptItemInput struct {
	LineItemID       *string  `json:"line_item_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	LineIndex        *int     `json:"line_index" binding:"omitempty,min=0" example:"0"`
	Description      string   `json:"description" binding:"required,min=1,max=200" example:"Navy poplin 120gsm"`
	Color            string   `json:"color" binding:"max=50" example:"NAVY"`
	Unit             string   `json:"unit" binding:"max=20" example:"m"`
	ReceivedQuantity float64  `json:"received_quantity" binding:"required,gt=0" example:"350.5"`
	ActualUnitPrice  *float64 `json:"actual_unit_price" binding:"omitempty,gte=0" example:"12.80"`
	QCResult         string   `json:"qc_result" binding:"max=50" example:"PASS"`
}

// RecordGoodsReceiptRequest represents a request to record a goods receipt
// @Description Request body for recording goods received against a supplier order
type RecordGoodsReceiptRequest struct {
	ReceivedDate *time.Time              `json:"received_date" example:"2026-03-12T00:00:00Z"`
	ReceivedBy   string                  `json:"received_by" binding:"max=100" example:"warehouse-a"`
	Remark       string                  `json:"remark" binding:"max=500" example:"second delivery"`
	Items        []GoodsReceiptItemInput `json:"items" binding:"required,min=1,dive"`
}

// GoodsReceiptResultResponse represents the outcome of recording a receipt
// @Description Goods receipt result response
type GoodsReceiptResultResponse struct {
	ReceiptID          string  `json:"receipt_id" example:"550e8400-e29b-41d4-a716-446655440010"`
	SupplierOrderID    string  `json:"supplier_order_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	ReceivingStatus    string  `json:"receiving_status" example:"PARTIALLY_RECEIVED"`
	ReceivedQuantity   float64 `json:"received_quantity" example:"350.5"`
	CumulativeReceived float64 `json:"cumulative_received" example:"750.5"`
	CostEntriesBooked  int     `json:"cost_entries_booked" example:"2"`
	SkippedUnpriced    int     `json:"skipped_unpriced" example:"0"`
	DroppedUnmapped    int     `json:"dropped_unmapped" example:"0"`
}

// RecordReceipt godoc
// @ID           recordGoodsReceipt
// @Summary      Record a goods receipt
// @Description  Record goods received against a supplier order; allocates the received costs onto the customer order ledger and recomputes the receiving status
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier Order ID" format(uuid)
// @Param        request body RecordGoodsReceiptRequest true "Goods receipt request"
// @Success      201 {object} APIResponse[GoodsReceiptResultResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /supplier-orders/{id}/receipts [post]
func (h *ReceivingHandler) RecordReceipt(c *gin.Context) {
	supplierOrderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier order ID format")
		return
	}

	var req RecordGoodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := receivingapp.RecordReceivingRequest{
		ReceivedDate: req.ReceivedDate,
		ReceivedBy:   req.ReceivedBy,
		Remark:       req.Remark,
	}

	for _, item := range req.Items {
		input := receivingapp.ReceivingItemRequest{
			LineIndex:        item.LineIndex,
			Description:      item.Description,
			Color:            item.Color,
			Unit:             item.Unit,
			ReceivedQuantity: toDecimal(item.ReceivedQuantity),
			QCResult:         item.QCResult,
		}
		if item.LineItemID != nil && *item.LineItemID != "" {
			lineItemID, err := uuid.Parse(*item.LineItemID)
			if err != nil {
				h.BadRequest(c, "Invalid line item ID format")
				return
			}
			input.LineItemID = &lineItemID
		}
		if item.ActualUnitPrice != nil {
			input.ActualUnitPrice = toDecimalPtr(*item.ActualUnitPrice)
		}
		appReq.Items = append(appReq.Items, input)
	}

	result, err := h.service.RecordReceiving(c.Request.Context(), supplierOrderID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toGoodsReceiptResultResponse(result))
}

// toGoodsReceiptResultResponse converts the application response to the handler response
func toGoodsReceiptResultResponse(result *receivingapp.RecordReceivingResponse) GoodsReceiptResultResponse {
	return GoodsReceiptResultResponse{
		ReceiptID:          result.ReceiptID.String(),
		SupplierOrderID:    result.SupplierOrderID.String(),
		ReceivingStatus:    result.ReceivingStatus.String(),
		ReceivedQuantity:   result.ReceivedQuantity.InexactFloat64(),
		CumulativeReceived: result.CumulativeReceived.InexactFloat64(),
		CostEntriesBooked:  result.CostEntriesBooked,
		SkippedUnpriced:    result.SkippedUnpriced,
		DroppedUnmapped:    result.DroppedUnmapped,
	}
}
