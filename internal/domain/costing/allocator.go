package costing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sewline/backend/internal/domain/procurement"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// AllocationSummary reports what happened to the items of one receipt
type AllocationSummary struct {
	EntryCount      int
	PricedItems     int
	SkippedUnpriced int
	DroppedUnmapped int
	NetTotal        decimal.Decimal // original currency, priced and mapped items only
	NetTotalBase    decimal.Decimal
	VATRefundTotal  decimal.Decimal // original currency
}

// ReceivingAllocator turns one goods receipt into order cost ledger
// entries. It is a pure domain service: it never touches persistence and
// never rescans historical receipts, so booking the same receipt twice is
// impossible by construction.
//
// Items without a usable price are skipped (the goods are still received,
// they just cost nothing yet). Items whose cost has nowhere to go, because
// the supplier order is not linked to a customer order, are dropped with a
// warning. Everything else is bucketed by destination customer-order line
// item, with a single order-level bucket for costs that have a customer
// order but no specific line.
type ReceivingAllocator struct {
	logger *zap.Logger
}

// NewReceivingAllocator creates a new receiving allocator
func NewReceivingAllocator(logger *zap.Logger) *ReceivingAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingAllocator{logger: logger}
}

// allocationBucket accumulates costs destined for one ledger entry
type allocationBucket struct {
	lineItemID   *uuid.UUID
	gross        decimal.Decimal
	refund       decimal.Decimal
	net          decimal.Decimal
	descriptions []string
	items        int
}

func (b *allocationBucket) add(description string, breakdown valueobject.VATBreakdown) {
	b.gross = b.gross.Add(breakdown.Gross)
	b.refund = b.refund.Add(breakdown.Refund)
	b.net = b.net.Add(breakdown.Net)
	b.items++
	for _, d := range b.descriptions {
		if d == description {
			return
		}
	}
	b.descriptions = append(b.descriptions, description)
}

// Allocate books the costs of one receipt against the customer order
// linked to the supplier order. The exchange rate is resolved once per
// receipt by the caller; rateNote carries an audit remark when the rate
// had to fall back to 1.
func (a *ReceivingAllocator) Allocate(order *procurement.SupplierOrder, receipt *procurement.GoodsReceipt, rate valueobject.ExchangeRate, rateNote string) ([]OrderCostEntry, AllocationSummary, error) {
	summary := AllocationSummary{
		NetTotal:       decimal.Zero,
		NetTotalBase:   decimal.Zero,
		VATRefundTotal: decimal.Zero,
	}

	// line-item buckets in first-seen order, order-level bucket last
	var bucketOrder []uuid.UUID
	lineBuckets := make(map[uuid.UUID]*allocationBucket)
	var orderBucket *allocationBucket

	for i := range receipt.Items {
		item := &receipt.Items[i]

		var line *procurement.SupplierOrderLineItem
		if item.SupplierOrderLineItemID != nil {
			if found, ok := order.FindItem(*item.SupplierOrderLineItemID); ok {
				line = found
			} else {
				a.logger.Warn("receipt item references unknown supplier order line",
					zap.String("receipt_id", receipt.ID.String()),
					zap.String("line_item_id", item.SupplierOrderLineItemID.String()))
			}
		}

		gross, ok := item.GrossCost()
		if !ok {
			summary.SkippedUnpriced++
			a.logger.Debug("skipping unpriced receipt item",
				zap.String("receipt_id", receipt.ID.String()),
				zap.String("description", item.Description))
			continue
		}
		summary.PricedItems++

		breakdown := valueobject.VATBreakdown{Gross: gross, Refund: decimal.Zero, Net: gross}
		if line != nil {
			breakdown = valueobject.ComputeVATRefund(gross, line.VATRate, line.VATRefundable)
		}

		switch {
		case order.CustomerOrderID != nil && line != nil && line.OrderLineItemID != nil:
			b, ok := lineBuckets[*line.OrderLineItemID]
			if !ok {
				b = &allocationBucket{
					lineItemID: line.OrderLineItemID,
					gross:      decimal.Zero,
					refund:     decimal.Zero,
					net:        decimal.Zero,
				}
				lineBuckets[*line.OrderLineItemID] = b
				bucketOrder = append(bucketOrder, *line.OrderLineItemID)
			}
			b.add(item.Description, breakdown)
		case order.CustomerOrderID != nil:
			if orderBucket == nil {
				orderBucket = &allocationBucket{
					gross:  decimal.Zero,
					refund: decimal.Zero,
					net:    decimal.Zero,
				}
			}
			orderBucket.add(item.Description, breakdown)
		default:
			summary.DroppedUnmapped++
			a.logger.Warn("dropping receipt item cost: supplier order has no customer order link",
				zap.String("supplier_order_id", order.ID.String()),
				zap.String("receipt_id", receipt.ID.String()),
				zap.String("description", item.Description),
				zap.String("gross", gross.String()))
			continue
		}

		summary.NetTotal = summary.NetTotal.Add(breakdown.Net)
		summary.VATRefundTotal = summary.VATRefundTotal.Add(breakdown.Refund)
	}

	buckets := make([]*allocationBucket, 0, len(bucketOrder)+1)
	for _, id := range bucketOrder {
		buckets = append(buckets, lineBuckets[id])
	}
	if orderBucket != nil {
		buckets = append(buckets, orderBucket)
	}

	category := CategoryForSupplierType(order.SupplierType)
	entries := make([]OrderCostEntry, 0, len(buckets))
	for _, b := range buckets {
		note := fmt.Sprintf("gross %s %s, VAT refund %s", b.gross.String(), order.Currency, b.refund.String())
		if rateNote != "" {
			note += "; " + rateNote
		}

		entry, err := NewOrderCostEntry(
			*order.CustomerOrderID,
			b.lineItemID,
			category,
			strings.Join(b.descriptions, ", "),
			order.SupplierName,
			order.Currency,
			b.net,
			rate,
			b.refund,
			note,
		)
		if err != nil {
			return nil, summary, err
		}
		entry.SupplierOrderID = &order.ID
		entry.GoodsReceiptID = &receipt.ID
		entries = append(entries, *entry)

		summary.NetTotalBase = summary.NetTotalBase.Add(entry.TotalCostBase)
	}
	summary.EntryCount = len(entries)

	return entries, summary, nil
}
