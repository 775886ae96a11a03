package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of a customer invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CountsAsRevenue reports whether the invoice contributes to actual revenue.
// Once an invoice has been issued to the customer it counts, paid or not.
func (s InvoiceStatus) CountsAsRevenue() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPaid
}

// CustomerInvoice is the invoice raised against a customer order.
// Issuing an invoice flips the order's P&L from estimated to actual revenue.
type CustomerInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerOrderID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status          InvoiceStatus        `gorm:"type:varchar(20);not null"`
	IssuedAt        *time.Time
	PaidAt          *time.Time
	Remark          string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CustomerInvoice) TableName() string {
	return "customer_invoices"
}

// NewCustomerInvoice creates a new draft invoice for a customer order
func NewCustomerInvoice(invoiceNumber string, customerOrderID uuid.UUID, currency valueobject.Currency, totalAmount decimal.Decimal) (*CustomerInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer order ID cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Invoice currency cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}

	return &CustomerInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerOrderID:   customerOrderID,
		Currency:          currency,
		TotalAmount:       totalAmount,
		Status:            InvoiceStatusDraft,
	}, nil
}

// Issue marks the invoice as sent to the customer
func (i *CustomerInvoice) Issue() error {
	if !i.Status.CanTransitionTo(InvoiceStatusSent) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot issue invoice in status "+i.Status.String())
	}

	now := time.Now()
	i.Status = InvoiceStatusSent
	i.IssuedAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewCustomerInvoiceIssuedEvent(i))

	return nil
}

// MarkPaid records payment of the invoice
func (i *CustomerInvoice) MarkPaid() error {
	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot mark invoice paid in status "+i.Status.String())
	}

	now := time.Now()
	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
	i.UpdatedAt = now
	return nil
}

// Cancel voids the invoice
func (i *CustomerInvoice) Cancel() error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot cancel invoice in status "+i.Status.String())
	}

	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}
