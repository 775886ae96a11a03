package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/shared"
)

// GormCustomerOrderRepository implements CustomerOrderRepository using GORM
type GormCustomerOrderRepository struct {
	db *gorm.DB
}

// NewGormCustomerOrderRepository creates a new GormCustomerOrderRepository
func NewGormCustomerOrderRepository(db *gorm.DB) *GormCustomerOrderRepository {
	return &GormCustomerOrderRepository{db: db}
}

// FindByID finds a customer order by its ID
func (r *GormCustomerOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.CustomerOrder, error) {
	var o order.CustomerOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds a customer order by its order number
func (r *GormCustomerOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.CustomerOrder, error) {
	var o order.CustomerOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll finds customer orders with filtering
func (r *GormCustomerOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.CustomerOrder, error) {
	var orders []order.CustomerOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.CustomerOrder{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByAnchorCandidates returns orders whose ship-by, in-house or order
// date falls inside [start, end). The incoterm decides which of the three
// dates actually anchors each order, so this is a superset that the caller
// narrows down after resolving the anchor per order.
func (r *GormCustomerOrderRepository) FindByAnchorCandidates(ctx context.Context, start, end time.Time) ([]order.CustomerOrder, error) {
	var orders []order.CustomerOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("(ship_by_date >= ? AND ship_by_date < ?) OR (in_house_date >= ? AND in_house_date < ?) OR (order_date >= ? AND order_date < ?)",
			start, end, start, end, start, end).
		Order("order_number ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a customer order
func (r *GormCustomerOrderRepository) Save(ctx context.Context, o *order.CustomerOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Save the order
		if err := tx.Save(o).Error; err != nil {
			return err
		}

		// Handle items: delete removed items and save/update existing ones
		if o.ID != uuid.Nil {
			currentItemIDs := make([]uuid.UUID, len(o.Items))
			for i, item := range o.Items {
				currentItemIDs[i] = item.ID
			}

			// Delete items not in the current list
			if len(currentItemIDs) > 0 {
				if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
					Delete(&order.OrderLineItem{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("order_id = ?", o.ID).
					Delete(&order.OrderLineItem{}).Error; err != nil {
					return err
				}
			}

			// Save/update remaining items
			for i := range o.Items {
				o.Items[i].OrderID = o.ID
				if err := tx.Save(&o.Items[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Delete deletes a customer order and its line items
func (r *GormCustomerOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&order.OrderLineItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&order.CustomerOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts customer orders matching the filter
func (r *GormCustomerOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&order.CustomerOrder{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCustomerOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Paginates() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	// Apply ordering against the field whitelist
	orderBy := ValidateSortField(filter.OrderBy, CustomerOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCustomerOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "currency":
			query = query.Where("currency = ?", value)
		case "shipping_terms":
			query = query.Where("shipping_terms = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormCustomerOrderRepository implements CustomerOrderRepository
var _ order.CustomerOrderRepository = (*GormCustomerOrderRepository)(nil)
