package production

import (
	"context"

	"github.com/google/uuid"

	"github.com/sewline/backend/internal/domain/shared"
)

// ProductionOrderRepository defines the persistence interface for production orders
type ProductionOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]ProductionOrder, error)
	FindByCustomerOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]ProductionOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductionOrder, error)
	Save(ctx context.Context, p *ProductionOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
}
