package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sewline/backend/internal/domain/procurement"
	"github.com/sewline/backend/internal/domain/shared"
)

// GormGoodsReceiptRepository implements GoodsReceiptRepository using GORM.
// Receipts are append-only, so the repository offers no update or delete
// beyond Save of a new aggregate.
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// FindByID finds a goods receipt by its ID
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.GoodsReceipt, error) {
	var receipt procurement.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindBySupplierOrder finds all receipts recorded against a supplier order
func (r *GormGoodsReceiptRepository) FindBySupplierOrder(ctx context.Context, supplierOrderID uuid.UUID) ([]procurement.GoodsReceipt, error) {
	var receipts []procurement.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("supplier_order_id = ?", supplierOrderID).
		Order("received_date ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// SumReceivedQuantity sums the received quantity over all persisted receipt
// items of a supplier order. The receiving status is always derived from
// this sum, never from a cached counter on the order.
func (r *GormGoodsReceiptRepository) SumReceivedQuantity(ctx context.Context, supplierOrderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&procurement.GoodsReceiptItem{}).
		Joins("JOIN goods_receipts ON goods_receipts.id = goods_receipt_items.goods_receipt_id").
		Where("goods_receipts.supplier_order_id = ?", supplierOrderID).
		Select("COALESCE(SUM(goods_receipt_items.received_quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save persists a goods receipt with its items
func (r *GormGoodsReceiptRepository) Save(ctx context.Context, receipt *procurement.GoodsReceipt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(receipt).Error; err != nil {
			return err
		}
		for i := range receipt.Items {
			receipt.Items[i].GoodsReceiptID = receipt.ID
			if err := tx.Save(&receipt.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormGoodsReceiptRepository implements GoodsReceiptRepository
var _ procurement.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
