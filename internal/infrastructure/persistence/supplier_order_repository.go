package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sewline/backend/internal/domain/procurement"
	"github.com/sewline/backend/internal/domain/shared"
)

// GormSupplierOrderRepository implements SupplierOrderRepository using GORM
type GormSupplierOrderRepository struct {
	db *gorm.DB
}

// NewGormSupplierOrderRepository creates a new GormSupplierOrderRepository
func NewGormSupplierOrderRepository(db *gorm.DB) *GormSupplierOrderRepository {
	return &GormSupplierOrderRepository{db: db}
}

// FindByID finds a supplier order by its ID
func (r *GormSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.SupplierOrder, error) {
	var o procurement.SupplierOrder
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

// FindByOrderNumber finds a supplier order by its order number
func (r *GormSupplierOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*procurement.SupplierOrder, error) {
	var o procurement.SupplierOrder
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

// FindByCustomerOrder finds supplier orders linked to a customer order
func (r *GormSupplierOrderRepository) FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]procurement.SupplierOrder, error) {
	var orders []procurement.SupplierOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_order_id = ?", customerOrderID).
		Order("order_date ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds supplier orders with filtering
func (r *GormSupplierOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.SupplierOrder, error) {
	var orders []procurement.SupplierOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&procurement.SupplierOrder{}).Preload("Items"),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a supplier order
func (r *GormSupplierOrderRepository) Save(ctx context.Context, o *procurement.SupplierOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(o).Error; err != nil {
			return err
		}

		if o.ID != uuid.Nil {
			currentItemIDs := make([]uuid.UUID, len(o.Items))
			for i, item := range o.Items {
				currentItemIDs[i] = item.ID
			}

			if len(currentItemIDs) > 0 {
				if err := tx.Where("supplier_order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
					Delete(&procurement.SupplierOrderLineItem{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("supplier_order_id = ?", o.ID).
					Delete(&procurement.SupplierOrderLineItem{}).Error; err != nil {
					return err
				}
			}

			for i := range o.Items {
				o.Items[i].SupplierOrderID = o.ID
				if err := tx.Save(&o.Items[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Delete deletes a supplier order and its line items
func (r *GormSupplierOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_order_id = ?", id).
			Delete(&procurement.SupplierOrderLineItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&procurement.SupplierOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts supplier orders matching the filter
func (r *GormSupplierOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&procurement.SupplierOrder{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSupplierOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Paginates() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SupplierOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSupplierOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR supplier_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_order_id":
			query = query.Where("customer_order_id = ?", value)
		case "supplier_type":
			query = query.Where("supplier_type = ?", value)
		case "receiving_status":
			query = query.Where("receiving_status = ?", value)
		case "receiving_statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("receiving_status IN ?", statuses)
			}
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

// Ensure GormSupplierOrderRepository implements SupplierOrderRepository
var _ procurement.SupplierOrderRepository = (*GormSupplierOrderRepository)(nil)
