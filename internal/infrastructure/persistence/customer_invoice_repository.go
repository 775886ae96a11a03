package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/shared"
)

// revenueStatuses are the invoice statuses that count as actual revenue
var revenueStatuses = []string{
	order.InvoiceStatusSent.String(),
	order.InvoiceStatusPaid.String(),
}

// GormCustomerInvoiceRepository implements CustomerInvoiceRepository using GORM
type GormCustomerInvoiceRepository struct {
	db *gorm.DB
}

// NewGormCustomerInvoiceRepository creates a new GormCustomerInvoiceRepository
func NewGormCustomerInvoiceRepository(db *gorm.DB) *GormCustomerInvoiceRepository {
	return &GormCustomerInvoiceRepository{db: db}
}

// FindByID finds a customer invoice by its ID
func (r *GormCustomerInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.CustomerInvoice, error) {
	var inv order.CustomerInvoice
	if err := r.db.WithContext(ctx).
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByOrder finds all invoices raised against a customer order
func (r *GormCustomerInvoiceRepository) FindByOrder(ctx context.Context, customerOrderID uuid.UUID) ([]order.CustomerInvoice, error) {
	var invoices []order.CustomerInvoice
	if err := r.db.WithContext(ctx).
		Where("customer_order_id = ?", customerOrderID).
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindIssuedByOrder finds the invoices of a customer order that count as
// actual revenue (sent or paid, cancelled and draft excluded)
func (r *GormCustomerInvoiceRepository) FindIssuedByOrder(ctx context.Context, customerOrderID uuid.UUID) ([]order.CustomerInvoice, error) {
	var invoices []order.CustomerInvoice
	if err := r.db.WithContext(ctx).
		Where("customer_order_id = ? AND status IN ?", customerOrderID, revenueStatuses).
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindIssuedByOrders is the bulk variant of FindIssuedByOrder for period
// roll-ups
func (r *GormCustomerInvoiceRepository) FindIssuedByOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]order.CustomerInvoice, error) {
	if len(customerOrderIDs) == 0 {
		return []order.CustomerInvoice{}, nil
	}

	var invoices []order.CustomerInvoice
	if err := r.db.WithContext(ctx).
		Where("customer_order_id IN ? AND status IN ?", customerOrderIDs, revenueStatuses).
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates a customer invoice
func (r *GormCustomerInvoiceRepository) Save(ctx context.Context, inv *order.CustomerInvoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// Delete deletes a customer invoice
func (r *GormCustomerInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&order.CustomerInvoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCustomerInvoiceRepository implements CustomerInvoiceRepository
var _ order.CustomerInvoiceRepository = (*GormCustomerInvoiceRepository)(nil)
