package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeCustomerOrder   = "CustomerOrder"
	AggregateTypeCustomerInvoice = "CustomerInvoice"
)

// Event type constants
const (
	EventTypeCustomerOrderCreated  = "CustomerOrderCreated"
	EventTypeCustomerInvoiceIssued = "CustomerInvoiceIssued"
)

// CustomerOrderCreatedEvent is raised when a new customer order is created
type CustomerOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID            `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	CustomerName  string               `json:"customer_name"`
	Currency      valueobject.Currency `json:"currency"`
	ShippingTerms ShippingTerms        `json:"shipping_terms"`
}

// NewCustomerOrderCreatedEvent creates a new CustomerOrderCreatedEvent
func NewCustomerOrderCreatedEvent(o *CustomerOrder) *CustomerOrderCreatedEvent {
	return &CustomerOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerOrderCreated, AggregateTypeCustomerOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		Currency:        o.Currency,
		ShippingTerms:   o.ShippingTerms,
	}
}

// EventType returns the event type name
func (e *CustomerOrderCreatedEvent) EventType() string {
	return EventTypeCustomerOrderCreated
}

// CustomerInvoiceIssuedEvent is raised when an invoice is sent to the customer.
// The order's P&L switches from estimated to actual revenue at this point, so
// cached period reports must be invalidated.
type CustomerInvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID       uuid.UUID            `json:"invoice_id"`
	InvoiceNumber   string               `json:"invoice_number"`
	CustomerOrderID uuid.UUID            `json:"customer_order_id"`
	Currency        valueobject.Currency `json:"currency"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
}

// NewCustomerInvoiceIssuedEvent creates a new CustomerInvoiceIssuedEvent
func NewCustomerInvoiceIssuedEvent(i *CustomerInvoice) *CustomerInvoiceIssuedEvent {
	return &CustomerInvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerInvoiceIssued, AggregateTypeCustomerInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNumber:   i.InvoiceNumber,
		CustomerOrderID: i.CustomerOrderID,
		Currency:        i.Currency,
		TotalAmount:     i.TotalAmount,
	}
}

// EventType returns the event type name
func (e *CustomerInvoiceIssuedEvent) EventType() string {
	return EventTypeCustomerInvoiceIssued
}
