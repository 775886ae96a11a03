package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/sewline/backend/internal/application/receiving"
	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/procurement"
)

// GormReceivingUnitOfWork commits the outcome of one receiving operation in
// a single database transaction: the goods receipt with its items, the
// supplier order with its refreshed receiving status, and the cost ledger
// entries. Either everything lands or nothing does.
type GormReceivingUnitOfWork struct {
	db *gorm.DB
}

// NewGormReceivingUnitOfWork creates a new GormReceivingUnitOfWork
func NewGormReceivingUnitOfWork(db *gorm.DB) *GormReceivingUnitOfWork {
	return &GormReceivingUnitOfWork{db: db}
}

// CommitReceiving persists the receipt, the supplier order and the ledger
// entries atomically
func (u *GormReceivingUnitOfWork) CommitReceiving(ctx context.Context, receipt *procurement.GoodsReceipt, supplierOrder *procurement.SupplierOrder, entries []costing.OrderCostEntry) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(receipt).Error; err != nil {
			return err
		}
		for i := range receipt.Items {
			receipt.Items[i].GoodsReceiptID = receipt.ID
			if err := tx.Save(&receipt.Items[i]).Error; err != nil {
				return err
			}
		}

		// Only the order row changes on receiving, line items never do
		if err := tx.Save(supplierOrder).Error; err != nil {
			return err
		}

		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Ensure GormReceivingUnitOfWork implements receiving.UnitOfWork
var _ receiving.UnitOfWork = (*GormReceivingUnitOfWork)(nil)
