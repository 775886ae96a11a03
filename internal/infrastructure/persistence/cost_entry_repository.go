package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/shared"
)

// GormOrderCostEntryRepository implements OrderCostEntryRepository using
// GORM. The ledger is append-only: there is deliberately no update or
// delete, corrections are booked as new entries.
type GormOrderCostEntryRepository struct {
	db *gorm.DB
}

// NewGormOrderCostEntryRepository creates a new GormOrderCostEntryRepository
func NewGormOrderCostEntryRepository(db *gorm.DB) *GormOrderCostEntryRepository {
	return &GormOrderCostEntryRepository{db: db}
}

// FindByID finds a cost entry by its ID
func (r *GormOrderCostEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.OrderCostEntry, error) {
	var entry costing.OrderCostEntry
	if err := r.db.WithContext(ctx).
		First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByCustomerOrder loads the full ledger of a customer order
func (r *GormOrderCostEntryRepository) FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]costing.OrderCostEntry, error) {
	var entries []costing.OrderCostEntry
	if err := r.db.WithContext(ctx).
		Where("customer_order_id = ?", customerOrderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByCustomerOrders loads ledger entries for a set of orders in one
// query, for period roll-ups
func (r *GormOrderCostEntryRepository) FindByCustomerOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]costing.OrderCostEntry, error) {
	if len(customerOrderIDs) == 0 {
		return []costing.OrderCostEntry{}, nil
	}

	var entries []costing.OrderCostEntry
	if err := r.db.WithContext(ctx).
		Where("customer_order_id IN ?", customerOrderIDs).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByGoodsReceipt finds the ledger entries booked from one goods receipt
func (r *GormOrderCostEntryRepository) FindByGoodsReceipt(ctx context.Context, goodsReceiptID uuid.UUID) ([]costing.OrderCostEntry, error) {
	var entries []costing.OrderCostEntry
	if err := r.db.WithContext(ctx).
		Where("goods_receipt_id = ?", goodsReceiptID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Append appends new entries to the ledger
func (r *GormOrderCostEntryRepository) Append(ctx context.Context, entries []costing.OrderCostEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// Ensure GormOrderCostEntryRepository implements OrderCostEntryRepository
var _ costing.OrderCostEntryRepository = (*GormOrderCostEntryRepository)(nil)
