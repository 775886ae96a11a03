package receiving

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sewline/backend/internal/domain/costing"
	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/domain/procurement"
	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

// invoicedAt returns a pointer to an actual unit price for receipt items
func invoicedAt(v string) *decimal.Decimal {
	p := decimal.RequireFromString(v)
	return &p
}

type MockSupplierOrderRepository struct {
	mock.Mock
}

func (m *MockSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.SupplierOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*procurement.SupplierOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]procurement.SupplierOrder, error) {
	args := m.Called(ctx, customerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.SupplierOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) Save(ctx context.Context, o *procurement.SupplierOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockSupplierOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockGoodsReceiptRepository struct {
	mock.Mock
}

func (m *MockGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.GoodsReceipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.GoodsReceipt), args.Error(1)
}

func (m *MockGoodsReceiptRepository) FindBySupplierOrder(ctx context.Context, supplierOrderID uuid.UUID) ([]procurement.GoodsReceipt, error) {
	args := m.Called(ctx, supplierOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.GoodsReceipt), args.Error(1)
}

func (m *MockGoodsReceiptRepository) SumReceivedQuantity(ctx context.Context, supplierOrderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, supplierOrderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockGoodsReceiptRepository) Save(ctx context.Context, r *procurement.GoodsReceipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockCustomerOrderRepository struct {
	mock.Mock
}

func (m *MockCustomerOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.CustomerOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.CustomerOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.CustomerOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) FindByAnchorCandidates(ctx context.Context, start, end time.Time) ([]order.CustomerOrder, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) Save(ctx context.Context, o *order.CustomerOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockCustomerOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) CommitReceiving(ctx context.Context, receipt *procurement.GoodsReceipt, supplierOrder *procurement.SupplierOrder, entries []costing.OrderCostEntry) error {
	args := m.Called(ctx, receipt, supplierOrder, entries)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type serviceFixture struct {
	supplierOrders *MockSupplierOrderRepository
	receipts       *MockGoodsReceiptRepository
	customerOrders *MockCustomerOrderRepository
	uow            *MockUnitOfWork
	publisher      *MockEventPublisher
	service        *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		supplierOrders: new(MockSupplierOrderRepository),
		receipts:       new(MockGoodsReceiptRepository),
		customerOrders: new(MockCustomerOrderRepository),
		uow:            new(MockUnitOfWork),
		publisher:      new(MockEventPublisher),
	}
	f.service = NewService(
		f.supplierOrders,
		f.receipts,
		f.customerOrders,
		costing.NewReceivingAllocator(zap.NewNop()),
		f.uow,
		f.publisher,
		nil,
		valueobject.CNY,
		zap.NewNop(),
	)
	return f
}

// newLinkedSupplierOrder builds a CNY fabric order of 800m linked to a
// customer order, with one line destined for a customer order line item
func newLinkedSupplierOrder(t *testing.T, currency valueobject.Currency, customerOrderID uuid.UUID) (*procurement.SupplierOrder, *procurement.SupplierOrderLineItem) {
	t.Helper()
	destLine := uuid.New()
	o, err := procurement.NewSupplierOrder("PO-1", "Hangzhou Textile Co", procurement.SupplierTypeFabricMill, currency, &customerOrderID, time.Now())
	require.NoError(t, err)
	line, err := o.AddItem("12oz denim", "Indigo", "m",
		decimal.NewFromInt(800), decimal.NewFromFloat(2.00), decimal.NewFromInt(13), true, &destLine)
	require.NoError(t, err)
	return o, line
}

func TestRecordReceiving(t *testing.T) {
	ctx := context.Background()

	t.Run("partial receipt books costs and updates status", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.Zero, nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			ReceivedBy: "warehouse",
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", Color: "Indigo", Unit: "m", ReceivedQuantity: decimal.NewFromInt(500), ActualUnitPrice: invoicedAt("2.00")},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, procurement.ReceivingStatusPartiallyReceived, resp.ReceivingStatus)
		assert.True(t, resp.CumulativeReceived.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, 1, resp.CostEntriesBooked)

		f.uow.AssertCalled(t, "CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.MatchedBy(func(entries []costing.OrderCostEntry) bool {
			// 500 * 2.00 gross, 13% refundable: net 870 at rate 1
			return len(entries) == 1 &&
				entries[0].TotalCost.Equal(decimal.NewFromInt(870)) &&
				entries[0].TotalCostBase.Equal(decimal.NewFromInt(870)) &&
				entries[0].VATRefund.Equal(decimal.NewFromInt(130))
		}))
		f.publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("final receipt reaches FULLY_RECEIVED from the persisted sum", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		// 500m already persisted from an earlier receipt
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.NewFromInt(500), nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", Unit: "m", ReceivedQuantity: decimal.NewFromInt(300), ActualUnitPrice: invoicedAt("2.00")},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, procurement.ReceivingStatusFullyReceived, resp.ReceivingStatus)
		assert.True(t, resp.CumulativeReceived.Equal(decimal.NewFromInt(800)))
	})

	t.Run("missing actual price receives the goods but books no cost", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.Zero, nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		// ordered at 2.00/m, but no supplier invoice yet: the receipt must
		// still commit, with zero ledger entries
		resp, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", Unit: "m", ReceivedQuantity: decimal.NewFromInt(500)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, procurement.ReceivingStatusPartiallyReceived, resp.ReceivingStatus)
		assert.True(t, resp.CumulativeReceived.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, 0, resp.CostEntriesBooked)
		assert.Equal(t, 1, resp.SkippedUnpriced)

		f.uow.AssertCalled(t, "CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.MatchedBy(func(entries []costing.OrderCostEntry) bool {
			return len(entries) == 0
		}))
	})

	t.Run("unknown supplier order rejects without persisting", func(t *testing.T) {
		f := newServiceFixture(t)
		id := uuid.New()
		f.supplierOrders.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.RecordReceiving(ctx, id, RecordReceivingRequest{
			Items: []ReceivingItemRequest{{Description: "x", ReceivedQuantity: decimal.NewFromInt(1)}},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.uow.AssertNotCalled(t, "CommitReceiving", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty receipt is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, _ := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)
		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)

		_, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{})
		assert.Error(t, err)
		f.uow.AssertNotCalled(t, "CommitReceiving", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative received quantity is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)
		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)

		_, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", ReceivedQuantity: decimal.NewFromInt(-10)},
			},
		})
		assert.Error(t, err)
		f.uow.AssertNotCalled(t, "CommitReceiving", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign currency uses the customer order rate", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrder, err := order.NewCustomerOrder("SO-1", "Nordic Apparel AB", valueobject.USD,
			decimal.NewFromFloat(7.2), order.ShippingTermsFOB, time.Now())
		require.NoError(t, err)
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.USD, customerOrder.ID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		f.customerOrders.On("FindByID", mock.Anything, customerOrder.ID).Return(customerOrder, nil)
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.Zero, nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err = f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", Unit: "m", ReceivedQuantity: decimal.NewFromInt(500), ActualUnitPrice: invoicedAt("2.00")},
			},
		})
		require.NoError(t, err)

		f.uow.AssertCalled(t, "CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.MatchedBy(func(entries []costing.OrderCostEntry) bool {
			// net 870 USD at 7.2 = 6264 CNY
			return len(entries) == 1 &&
				entries[0].TotalCostBase.Equal(decimal.NewFromInt(6264)) &&
				entries[0].ExchangeRate.Equal(decimal.NewFromFloat(7.2))
		}))
	})

	t.Run("missing rate falls back to 1 with a note", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.USD, customerOrderID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		f.customerOrders.On("FindByID", mock.Anything, customerOrderID).Return(nil, shared.ErrNotFound)
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.Zero, nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", Unit: "m", ReceivedQuantity: decimal.NewFromInt(500), ActualUnitPrice: invoicedAt("2.00")},
			},
		})
		require.NoError(t, err)

		f.uow.AssertCalled(t, "CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.MatchedBy(func(entries []costing.OrderCostEntry) bool {
			return len(entries) == 1 &&
				entries[0].ExchangeRate.Equal(decimal.NewFromInt(1)) &&
				entries[0].Note != "" &&
				entries[0].TotalCostBase.Equal(decimal.NewFromInt(870))
		}))
	})

	t.Run("positional line reference resolves to the line item", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.Zero, nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		idx := 0
		_, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineIndex: &idx, Description: "12oz denim", Unit: "m", ReceivedQuantity: decimal.NewFromInt(100)},
			},
		})
		require.NoError(t, err)

		f.uow.AssertCalled(t, "CommitReceiving", mock.Anything, mock.MatchedBy(func(r *procurement.GoodsReceipt) bool {
			return len(r.Items) == 1 &&
				r.Items[0].SupplierOrderLineItemID != nil &&
				*r.Items[0].SupplierOrderLineItemID == line.ID
		}), supplierOrder, mock.Anything)
	})

	t.Run("publish failure does not fail the receipt", func(t *testing.T) {
		f := newServiceFixture(t)
		customerOrderID := uuid.New()
		supplierOrder, line := newLinkedSupplierOrder(t, valueobject.CNY, customerOrderID)

		f.supplierOrders.On("FindByID", mock.Anything, supplierOrder.ID).Return(supplierOrder, nil)
		f.receipts.On("SumReceivedQuantity", mock.Anything, supplierOrder.ID).Return(decimal.Zero, nil)
		f.uow.On("CommitReceiving", mock.Anything, mock.Anything, supplierOrder, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := f.service.RecordReceiving(ctx, supplierOrder.ID, RecordReceivingRequest{
			Items: []ReceivingItemRequest{
				{LineItemID: &line.ID, Description: "12oz denim", ReceivedQuantity: decimal.NewFromInt(10)},
			},
		})
		assert.NoError(t, err)
	})
}
