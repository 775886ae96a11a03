package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sewline/backend/internal/domain/production"
	"github.com/sewline/backend/internal/domain/shared"
)

// GormProductionOrderRepository implements ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// FindByID finds a production order by its ID
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var p production.ProductionOrder
	if err := r.db.WithContext(ctx).
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCustomerOrder finds production orders for a customer order
func (r *GormProductionOrderRepository) FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]production.ProductionOrder, error) {
	var orders []production.ProductionOrder
	if err := r.db.WithContext(ctx).
		Where("customer_order_id = ?", customerOrderID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByCustomerOrders loads production orders for a set of customer orders
// in one query, for period roll-ups
func (r *GormProductionOrderRepository) FindByCustomerOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]production.ProductionOrder, error) {
	if len(customerOrderIDs) == 0 {
		return []production.ProductionOrder{}, nil
	}

	var orders []production.ProductionOrder
	if err := r.db.WithContext(ctx).
		Where("customer_order_id IN ?", customerOrderIDs).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds production orders with filtering
func (r *GormProductionOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]production.ProductionOrder, error) {
	var orders []production.ProductionOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&production.ProductionOrder{}),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a production order
func (r *GormProductionOrderRepository) Save(ctx context.Context, p *production.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete deletes a production order
func (r *GormProductionOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&production.ProductionOrder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormProductionOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR factory_name ILIKE ? OR style_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_order_id":
			query = query.Where("customer_order_id = ?", value)
		case "factory_name":
			query = query.Where("factory_name = ?", value)
		case "invoiced":
			if invoiced, ok := value.(bool); ok {
				if invoiced {
					query = query.Where("invoiced_at IS NOT NULL")
				} else {
					query = query.Where("invoiced_at IS NULL")
				}
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	if filter.Paginates() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductionOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// Ensure GormProductionOrderRepository implements ProductionOrderRepository
var _ production.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
