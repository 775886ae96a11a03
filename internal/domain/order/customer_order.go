package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// ShippingTerms represents the incoterm agreed with the customer.
// The incoterm decides which date anchors the order in period reports.
type ShippingTerms string

const (
	ShippingTermsFOB ShippingTerms = "FOB"
	ShippingTermsCIF ShippingTerms = "CIF"
	ShippingTermsDDP ShippingTerms = "DDP"
	ShippingTermsEXW ShippingTerms = "EXW"
)

// IsValid checks if the value is a known incoterm
func (s ShippingTerms) IsValid() bool {
	switch s {
	case ShippingTermsFOB, ShippingTermsCIF, ShippingTermsDDP, ShippingTermsEXW:
		return true
	}
	return false
}

// String returns the string representation of ShippingTerms
func (s ShippingTerms) String() string {
	return string(s)
}

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusDraft        OrderStatus = "DRAFT"
	OrderStatusConfirmed    OrderStatus = "CONFIRMED"
	OrderStatusInProduction OrderStatus = "IN_PRODUCTION"
	OrderStatusShipped      OrderStatus = "SHIPPED"
	OrderStatusCompleted    OrderStatus = "COMPLETED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProduction,
		OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusInProduction || target == OrderStatusCancelled
	case OrderStatusInProduction:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// allowsItemChanges reports whether line items may still be edited
func (s OrderStatus) allowsItemChanges() bool {
	return s == OrderStatusDraft || s == OrderStatusConfirmed
}

// OrderLineItem represents one style/color position on a customer order
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	StyleNumber string          `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:varchar(200)"`
	Color       string          `gorm:"type:varchar(50)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // in the order currency
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineItem) TableName() string {
	return "customer_order_line_items"
}

// NewOrderLineItem creates a new order line item
func NewOrderLineItem(orderID uuid.UUID, styleNumber, description, color string, quantity, unitPrice decimal.Decimal) (*OrderLineItem, error) {
	if styleNumber == "" {
		return nil, shared.NewDomainError("INVALID_STYLE", "Style number cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderLineItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		StyleNumber: styleNumber,
		Description: description,
		Color:       color,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CustomerOrder is the aggregate root for a garment export order.
// It carries the commercial terms needed to value the order in the
// company base currency: order currency, the agreed exchange rate and
// the incoterm that decides the reporting anchor date.
type CustomerOrder struct {
	shared.BaseAggregateRoot
	OrderNumber   string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName  string               `gorm:"type:varchar(200);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate  decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:1"` // base-currency units per order-currency unit
	ShippingTerms ShippingTerms        `gorm:"type:varchar(10);not null"`
	OrderDate     time.Time            `gorm:"not null;index"`
	ShipByDate    *time.Time           `gorm:"index"` // contractual latest ship date
	InHouseDate   *time.Time           `gorm:"index"` // date goods must be in the customer's warehouse
	Items         []OrderLineItem      `gorm:"foreignKey:OrderID"`
	TotalAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // Sum of all line totals, in the order currency
	Status        OrderStatus          `gorm:"type:varchar(20);not null"`
	Remark        string               `gorm:"type:varchar(500)"`
	ShippedAt     *time.Time
	CancelledAt   *time.Time
}

// TableName returns the table name for GORM
func (CustomerOrder) TableName() string {
	return "customer_orders"
}

// NewCustomerOrder creates a new customer order
func NewCustomerOrder(orderNumber, customerName string, currency valueobject.Currency, exchangeRate decimal.Decimal, terms ShippingTerms, orderDate time.Time) (*CustomerOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Order currency cannot be empty")
	}
	if !exchangeRate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_EXCHANGE_RATE", "Exchange rate must be positive")
	}
	if !terms.IsValid() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_TERMS", "Unknown shipping terms")
	}
	if orderDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ORDER_DATE", "Order date cannot be empty")
	}

	order := &CustomerOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerName:      customerName,
		Currency:          currency,
		ExchangeRate:      exchangeRate,
		ShippingTerms:     terms,
		OrderDate:         orderDate,
		Items:             make([]OrderLineItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            OrderStatusDraft,
	}

	order.AddDomainEvent(NewCustomerOrderCreatedEvent(order))

	return order, nil
}

// SetShipByDate sets the contractual latest ship date
func (o *CustomerOrder) SetShipByDate(d time.Time) {
	o.ShipByDate = &d
	o.UpdatedAt = time.Now()
}

// SetInHouseDate sets the customer's in-house (cancel) date
func (o *CustomerOrder) SetInHouseDate(d time.Time) {
	o.InHouseDate = &d
	o.UpdatedAt = time.Now()
}

// AddItem adds a new line item to the order
// Only allowed while the order still accepts item changes
func (o *CustomerOrder) AddItem(styleNumber, description, color string, quantity, unitPrice decimal.Decimal) (*OrderLineItem, error) {
	if !o.Status.allowsItemChanges() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items after production has started")
	}

	item, err := NewOrderLineItem(o.ID, styleNumber, description, color, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItemQuantity updates the quantity of an existing line item
func (o *CustomerOrder) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if !o.Status.allowsItemChanges() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify items after production has started")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items[i].Quantity = quantity
			o.Items[i].LineTotal = quantity.Mul(o.Items[i].UnitPrice)
			o.Items[i].UpdatedAt = time.Now()
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found in order")
}

// RemoveItem removes a line item from the order
func (o *CustomerOrder) RemoveItem(itemID uuid.UUID) error {
	if !o.Status.allowsItemChanges() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items after production has started")
	}

	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found in order")
}

// FindItem returns the line item with the given ID
func (o *CustomerOrder) FindItem(itemID uuid.UUID) (*OrderLineItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// TransitionTo moves the order to the target status
func (o *CustomerOrder) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot transition from "+o.Status.String()+" to "+target.String())
	}

	o.Status = target
	now := time.Now()
	switch target {
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
	}
	o.UpdatedAt = now
	return nil
}

// AnchorDate returns the date used to place this order in a reporting
// period. FOB and CIF orders are recognized when they leave the factory,
// so the ship-by date anchors them; DDP and EXW orders use the in-house
// date. Orders missing the relevant date fall back to the order date.
func (o *CustomerOrder) AnchorDate() time.Time {
	switch o.ShippingTerms {
	case ShippingTermsFOB, ShippingTermsCIF:
		if o.ShipByDate != nil {
			return *o.ShipByDate
		}
	case ShippingTermsDDP, ShippingTermsEXW:
		if o.InHouseDate != nil {
			return *o.InHouseDate
		}
	}
	return o.OrderDate
}

// RateToBase returns the order's exchange rate as a conversion into base
func (o *CustomerOrder) RateToBase(base valueobject.Currency) (valueobject.ExchangeRate, error) {
	return valueobject.NewExchangeRate(o.Currency, base, o.ExchangeRate)
}

// EstimatedRevenueBase returns the order total converted to the base currency
func (o *CustomerOrder) EstimatedRevenueBase(base valueobject.Currency) (decimal.Decimal, error) {
	rate, err := o.RateToBase(base)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.ToBase(o.TotalAmount), nil
}

// recalculateTotals recomputes the order total from line items
func (o *CustomerOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.TotalAmount = total
}
