package costing

import (
	"context"

	"github.com/google/uuid"
)

// OrderCostEntryRepository defines the persistence interface for the order
// cost ledger. The ledger is append-only, so there is no update or delete.
type OrderCostEntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderCostEntry, error)
	FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]OrderCostEntry, error)
	// FindByCustomerOrders loads ledger entries for a set of orders in one
	// query, for period roll-ups.
	FindByCustomerOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]OrderCostEntry, error)
	FindByGoodsReceipt(ctx context.Context, goodsReceiptID uuid.UUID) ([]OrderCostEntry, error)
	Append(ctx context.Context, entries []OrderCostEntry) error
}
