package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
)

// SupplierOrderRepository defines the persistence interface for supplier orders
type SupplierOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*SupplierOrder, error)
	FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]SupplierOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SupplierOrder, error)
	Save(ctx context.Context, o *SupplierOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// GoodsReceiptRepository defines the persistence interface for goods receipts
type GoodsReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceipt, error)
	FindBySupplierOrder(ctx context.Context, supplierOrderID uuid.UUID) ([]GoodsReceipt, error)
	// SumReceivedQuantity sums the received quantity over ALL persisted
	// receipt items of a supplier order. Receiving status is always derived
	// from this sum, never from a cached counter.
	SumReceivedQuantity(ctx context.Context, supplierOrderID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, r *GoodsReceipt) error
}
