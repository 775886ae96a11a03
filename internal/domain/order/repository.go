package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sewline/backend/internal/domain/shared"
)

// CustomerOrderRepository defines the persistence interface for customer orders
type CustomerOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*CustomerOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CustomerOrder, error)
	// FindByAnchorCandidates returns orders whose ship-by, in-house or order
	// date falls inside [start, end). The result is a superset: the exact
	// anchor date depends on each order's shipping terms and is resolved by
	// the caller.
	FindByAnchorCandidates(ctx context.Context, start, end time.Time) ([]CustomerOrder, error)
	Save(ctx context.Context, o *CustomerOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CustomerInvoiceRepository defines the persistence interface for customer invoices
type CustomerInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerInvoice, error)
	FindByOrder(ctx context.Context, customerOrderID uuid.UUID) ([]CustomerInvoice, error)
	// FindIssuedByOrder returns only invoices that count as actual revenue
	FindIssuedByOrder(ctx context.Context, customerOrderID uuid.UUID) ([]CustomerInvoice, error)
	// FindIssuedByOrders is the bulk variant for period roll-ups
	FindIssuedByOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]CustomerInvoice, error)
	Save(ctx context.Context, inv *CustomerInvoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
