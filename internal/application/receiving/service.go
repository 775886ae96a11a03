package receiving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/procurement"
	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
	"github.com/sewline/backend/internal/infrastructure/telemetry"
)

// UnitOfWork commits the full outcome of a receiving operation in one
// database transaction: the receipt with its items, the cost ledger
// entries and the supplier order's receiving status. Either everything is
// persisted or nothing is.
type UnitOfWork interface {
	CommitReceiving(ctx context.Context, receipt *procurement.GoodsReceipt, supplierOrder *procurement.SupplierOrder, entries []costing.OrderCostEntry) error
}

// Metrics receives business counters from the receiving flow. A nil
// implementation is allowed.
type Metrics interface {
	RecordGoodsReceipt(ctx context.Context, costEntries int)
}

// Service records goods receipts against supplier orders: it resolves the
// exchange rate, allocates the received costs onto the customer order
// ledger, recomputes the receiving status from all persisted receipts and
// commits everything atomically.
type Service struct {
	supplierOrders procurement.SupplierOrderRepository
	receipts       procurement.GoodsReceiptRepository
	customerOrders order.CustomerOrderRepository
	allocator      *costing.ReceivingAllocator
	uow            UnitOfWork
	publisher      shared.EventPublisher
	metrics        Metrics
	baseCurrency   valueobject.Currency
	logger         *zap.Logger
}

// NewService creates a new receiving service
func NewService(
	supplierOrders procurement.SupplierOrderRepository,
	receipts procurement.GoodsReceiptRepository,
	customerOrders order.CustomerOrderRepository,
	allocator *costing.ReceivingAllocator,
	uow UnitOfWork,
	publisher shared.EventPublisher,
	metrics Metrics,
	baseCurrency valueobject.Currency,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseCurrency == "" {
		baseCurrency = valueobject.DefaultCurrency
	}
	return &Service{
		supplierOrders: supplierOrders,
		receipts:       receipts,
		customerOrders: customerOrders,
		allocator:      allocator,
		uow:            uow,
		publisher:      publisher,
		metrics:        metrics,
		baseCurrency:   baseCurrency,
		logger:         logger,
	}
}

// RecordReceiving records one goods receipt against a supplier order.
// A receipt against an unknown supplier order is rejected outright and
// nothing is persisted. Item-level problems never abort the receipt:
// unpriced items are received at zero cost, costs that cannot be mapped to
// a customer order are dropped with a warning, and a missing exchange rate
// falls back to 1 with an audit note on the ledger entries.
func (s *Service) RecordReceiving(ctx context.Context, supplierOrderID uuid.UUID, req RecordReceivingRequest) (resp *RecordReceivingResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receiving", "record_receipt",
		telemetry.WithAttribute(telemetry.SpanAttrSupplierOrderID, supplierOrderID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	supplierOrder, err := s.supplierOrders.FindByID(ctx, supplierOrderID)
	if err != nil {
		return nil, err
	}
	if supplierOrder == nil {
		return nil, shared.ErrNotFound
	}

	receipt, err := s.buildReceipt(supplierOrder, req)
	if err != nil {
		return nil, err
	}

	rate, rateNote, err := s.resolveRate(ctx, supplierOrder)
	if err != nil {
		return nil, err
	}

	entries, summary, err := s.allocator.Allocate(supplierOrder, receipt, rate, rateNote)
	if err != nil {
		return nil, err
	}

	// Cumulative received = everything already persisted plus this receipt.
	// The status is derived from that sum, never from a running counter.
	persisted, err := s.receipts.SumReceivedQuantity(ctx, supplierOrderID)
	if err != nil {
		return nil, fmt.Errorf("summing received quantity: %w", err)
	}
	cumulative := persisted.Add(receipt.TotalReceivedQuantity())
	if _, err := supplierOrder.RefreshReceivingStatus(cumulative); err != nil {
		return nil, err
	}

	if err := s.uow.CommitReceiving(ctx, receipt, supplierOrder, entries); err != nil {
		return nil, fmt.Errorf("committing receiving transaction: %w", err)
	}

	telemetry.AddEvent(span, "receipt_committed",
		telemetry.SpanAttrReceiptID, receipt.ID.String(),
		telemetry.SpanAttrReceivingStatus, supplierOrder.ReceivingStatus.String(),
		"cost_entries", len(entries),
		"skipped_unpriced", summary.SkippedUnpriced)

	s.logger.Info("goods receipt recorded",
		zap.String("supplier_order_id", supplierOrderID.String()),
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("receiving_status", supplierOrder.ReceivingStatus.String()),
		zap.Int("cost_entries", len(entries)),
		zap.Int("skipped_unpriced", summary.SkippedUnpriced),
		zap.Int("dropped_unmapped", summary.DroppedUnmapped))

	event := procurement.NewGoodsReceiptRecordedEvent(receipt, supplierOrder, len(entries))
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			// The receipt is committed; a failed publish only delays cache
			// invalidation.
			s.logger.Warn("failed to publish goods receipt event",
				zap.String("receipt_id", receipt.ID.String()),
				zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordGoodsReceipt(ctx, len(entries))
	}

	return &RecordReceivingResponse{
		ReceiptID:          receipt.ID,
		SupplierOrderID:    supplierOrder.ID,
		ReceivingStatus:    supplierOrder.ReceivingStatus,
		ReceivedQuantity:   receipt.TotalReceivedQuantity(),
		CumulativeReceived: cumulative,
		CostEntriesBooked:  len(entries),
		SkippedUnpriced:    summary.SkippedUnpriced,
		DroppedUnmapped:    summary.DroppedUnmapped,
	}, nil
}

// buildReceipt turns the request into a GoodsReceipt aggregate, resolving
// positional line references to explicit line item IDs
func (s *Service) buildReceipt(supplierOrder *procurement.SupplierOrder, req RecordReceivingRequest) (*procurement.GoodsReceipt, error) {
	var receivedDate time.Time
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}
	receipt, err := procurement.NewGoodsReceipt(supplierOrder.ID, receivedDate, req.ReceivedBy, req.Remark)
	if err != nil {
		return nil, err
	}

	for i, item := range req.Items {
		lineItemID, orderedQty := s.resolveLine(supplierOrder, item, i)

		qc := procurement.QCResult(item.QCResult)
		if _, err := receipt.AddItem(lineItemID, item.Description, item.Color, item.Unit,
			orderedQty, item.ReceivedQuantity, item.ActualUnitPrice, qc); err != nil {
			return nil, err
		}
	}

	if err := receipt.Validate(); err != nil {
		return nil, err
	}
	return receipt, nil
}

// resolveLine maps a request item to a supplier order line. Explicit IDs
// win over positional indexes. Unresolvable references leave the item
// unmatched; its cost is handled downstream by the allocator.
func (s *Service) resolveLine(supplierOrder *procurement.SupplierOrder, item ReceivingItemRequest, position int) (*uuid.UUID, decimal.Decimal) {
	if item.LineItemID != nil {
		if line, ok := supplierOrder.FindItem(*item.LineItemID); ok {
			return &line.ID, line.OrderedQuantity
		}
		s.logger.Warn("receiving item references unknown line item",
			zap.String("supplier_order_id", supplierOrder.ID.String()),
			zap.String("line_item_id", item.LineItemID.String()),
			zap.Int("position", position))
		return nil, decimal.Zero
	}
	if item.LineIndex != nil {
		if line, ok := supplierOrder.ItemAt(*item.LineIndex); ok {
			return &line.ID, line.OrderedQuantity
		}
		s.logger.Warn("receiving item references line index out of range",
			zap.String("supplier_order_id", supplierOrder.ID.String()),
			zap.Int("line_index", *item.LineIndex),
			zap.Int("position", position))
		return nil, decimal.Zero
	}
	return nil, decimal.Zero
}

// resolveRate resolves the exchange rate for a supplier order once per
// receipt. Base-currency orders convert at 1; foreign-currency orders use
// the linked customer order's agreed rate; anything else falls back to 1
// with an audit note.
func (s *Service) resolveRate(ctx context.Context, supplierOrder *procurement.SupplierOrder) (valueobject.ExchangeRate, string, error) {
	if supplierOrder.Currency == s.baseCurrency {
		return valueobject.IdentityRate(s.baseCurrency), "", nil
	}

	if supplierOrder.CustomerOrderID != nil {
		customerOrder, err := s.customerOrders.FindByID(ctx, *supplierOrder.CustomerOrderID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return valueobject.ExchangeRate{}, "", err
		}
		if customerOrder != nil && customerOrder.Currency == supplierOrder.Currency {
			rate, err := customerOrder.RateToBase(s.baseCurrency)
			if err != nil {
				return valueobject.ExchangeRate{}, "", err
			}
			return rate, "", nil
		}
	}

	rate, err := valueobject.NewExchangeRate(supplierOrder.Currency, s.baseCurrency, decimal.NewFromInt(1))
	if err != nil {
		return valueobject.ExchangeRate{}, "", err
	}
	note := fmt.Sprintf("no exchange rate on file for %s, used 1", supplierOrder.Currency)
	s.logger.Warn("exchange rate fallback",
		zap.String("supplier_order_id", supplierOrder.ID.String()),
		zap.String("currency", string(supplierOrder.Currency)))
	return rate, note, nil
}
