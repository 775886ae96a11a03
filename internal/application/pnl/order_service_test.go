package pnl

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
	"github.com/sewline/backend/internal/domain/production"
	"github.com/sewline/backend/internal/domain/shared"
	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

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

type MockCustomerInvoiceRepository struct {
	mock.Mock
}

func (m *MockCustomerInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.CustomerInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CustomerInvoice), args.Error(1)
}

func (m *MockCustomerInvoiceRepository) FindByOrder(ctx context.Context, customerOrderID uuid.UUID) ([]order.CustomerInvoice, error) {
	args := m.Called(ctx, customerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CustomerInvoice), args.Error(1)
}

func (m *MockCustomerInvoiceRepository) FindIssuedByOrder(ctx context.Context, customerOrderID uuid.UUID) ([]order.CustomerInvoice, error) {
	args := m.Called(ctx, customerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CustomerInvoice), args.Error(1)
}

func (m *MockCustomerInvoiceRepository) FindIssuedByOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]order.CustomerInvoice, error) {
	args := m.Called(ctx, customerOrderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CustomerInvoice), args.Error(1)
}

func (m *MockCustomerInvoiceRepository) Save(ctx context.Context, inv *order.CustomerInvoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockCustomerInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOrderCostEntryRepository struct {
	mock.Mock
}

func (m *MockOrderCostEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.OrderCostEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.OrderCostEntry), args.Error(1)
}

func (m *MockOrderCostEntryRepository) FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]costing.OrderCostEntry, error) {
	args := m.Called(ctx, customerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]costing.OrderCostEntry), args.Error(1)
}

func (m *MockOrderCostEntryRepository) FindByCustomerOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]costing.OrderCostEntry, error) {
	args := m.Called(ctx, customerOrderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]costing.OrderCostEntry), args.Error(1)
}

func (m *MockOrderCostEntryRepository) FindByGoodsReceipt(ctx context.Context, goodsReceiptID uuid.UUID) ([]costing.OrderCostEntry, error) {
	args := m.Called(ctx, goodsReceiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]costing.OrderCostEntry), args.Error(1)
}

func (m *MockOrderCostEntryRepository) Append(ctx context.Context, entries []costing.OrderCostEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

type MockProductionOrderRepository struct {
	mock.Mock
}

func (m *MockProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*production.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) FindByCustomerOrder(ctx context.Context, customerOrderID uuid.UUID) ([]production.ProductionOrder, error) {
	args := m.Called(ctx, customerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]production.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) FindByCustomerOrders(ctx context.Context, customerOrderIDs []uuid.UUID) ([]production.ProductionOrder, error) {
	args := m.Called(ctx, customerOrderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]production.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]production.ProductionOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]production.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) Save(ctx context.Context, p *production.ProductionOrder) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductionOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) Get(ctx context.Context, key string) (*PeriodPnLReport, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PeriodPnLReport), args.Error(1)
}

func (m *MockReportCache) Set(ctx context.Context, key string, report *PeriodPnLReport) error {
	args := m.Called(ctx, key, report)
	return args.Error(0)
}

func (m *MockReportCache) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type orderServiceFixture struct {
	orders      *MockCustomerOrderRepository
	invoices    *MockCustomerInvoiceRepository
	costEntries *MockOrderCostEntryRepository
	production  *MockProductionOrderRepository
	service     *OrderPnLService
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	t.Helper()
	f := &orderServiceFixture{
		orders:      new(MockCustomerOrderRepository),
		invoices:    new(MockCustomerInvoiceRepository),
		costEntries: new(MockOrderCostEntryRepository),
		production:  new(MockProductionOrderRepository),
	}
	f.service = NewOrderPnLService(f.orders, f.invoices, f.costEntries, f.production,
		valueobject.CNY, nil, zap.NewNop())
	return f
}

// newTestOrder builds a CNY order with one navy line: 1000 pcs at 10.00,
// total 10000
func newTestOrder(t *testing.T) *order.CustomerOrder {
	t.Helper()
	o, err := order.NewCustomerOrder("SO-2026-001", "Acme Apparel", valueobject.CNY,
		decimal.NewFromInt(1), order.ShippingTermsFOB,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = o.AddItem("ST-100", "Crew neck tee", "Navy", decimal.NewFromInt(1000), decimal.NewFromInt(10))
	require.NoError(t, err)
	return o
}

// newLedgerEntry books a net cost with a VAT refund at rate 1
func newLedgerEntry(t *testing.T, orderID uuid.UUID, lineItemID *uuid.UUID, net, vatRefund int64) costing.OrderCostEntry {
	t.Helper()
	e, err := costing.NewOrderCostEntry(orderID, lineItemID, costing.CostCategoryFabric,
		"fabric delivery", "Hangzhou Mill", valueobject.CNY,
		decimal.NewFromInt(net), valueobject.IdentityRate(valueobject.CNY),
		decimal.NewFromInt(vatRefund), "")
	require.NoError(t, err)
	return *e
}

func TestOrderPnLService_GetOrderPnL(t *testing.T) {
	ctx := context.Background()

	t.Run("estimated view before any invoice", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := newTestOrder(t)

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.invoices.On("FindIssuedByOrder", mock.Anything, o.ID).Return([]order.CustomerInvoice{}, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{
			newLedgerEntry(t, o.ID, nil, 7000, 910),
		}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{}, nil)

		pnl, err := f.service.GetOrderPnL(ctx, o.ID)
		require.NoError(t, err)

		assert.False(t, pnl.IsActual)
		assert.True(t, pnl.EstimatedRevenue.Equal(decimal.NewFromInt(10000)))
		assert.True(t, pnl.NetCosts.Equal(decimal.NewFromInt(7000)))
		assert.True(t, pnl.VATRefundTotal.Equal(decimal.NewFromInt(910)))
		assert.True(t, pnl.EstimatedProfit.Equal(decimal.NewFromInt(3000)))
		assert.True(t, pnl.EstimatedMargin.Equal(decimal.NewFromInt(30)))
		assert.Nil(t, pnl.ActualRevenue)
		assert.Nil(t, pnl.ActualProfit)
		assert.Nil(t, pnl.ActualMargin)
		assert.Nil(t, pnl.RevenueVariance)
	})

	t.Run("actual view after invoice issued", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := newTestOrder(t)

		inv, err := order.NewCustomerInvoice("INV-2026-001", o.ID, valueobject.CNY, decimal.NewFromInt(9500))
		require.NoError(t, err)
		require.NoError(t, inv.Issue())

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.invoices.On("FindIssuedByOrder", mock.Anything, o.ID).Return([]order.CustomerInvoice{*inv}, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{
			newLedgerEntry(t, o.ID, nil, 7000, 910),
		}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{}, nil)

		pnl, err := f.service.GetOrderPnL(ctx, o.ID)
		require.NoError(t, err)

		assert.True(t, pnl.IsActual)
		require.NotNil(t, pnl.ActualRevenue)
		assert.True(t, pnl.ActualRevenue.Equal(decimal.NewFromInt(9500)))
		require.NotNil(t, pnl.ActualProfit)
		assert.True(t, pnl.ActualProfit.Equal(decimal.NewFromInt(2500)))
		require.NotNil(t, pnl.ActualMargin)
		assert.InDelta(t, 26.3158, pnl.ActualMargin.InexactFloat64(), 0.001)
		require.NotNil(t, pnl.RevenueVariance)
		assert.True(t, pnl.RevenueVariance.Equal(decimal.NewFromInt(-500)))

		// the estimated view stays intact alongside the actual one
		assert.True(t, pnl.EstimatedRevenue.Equal(decimal.NewFromInt(10000)))
		assert.True(t, pnl.EstimatedProfit.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("foreign currency order converts at the agreed rate", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o, err := order.NewCustomerOrder("SO-2026-002", "US Buyer", valueobject.USD,
			decimal.RequireFromString("7.2"), order.ShippingTermsFOB,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = o.AddItem("ST-200", "Hoodie", "Black", decimal.NewFromInt(100), decimal.NewFromInt(10))
		require.NoError(t, err)

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.invoices.On("FindIssuedByOrder", mock.Anything, o.ID).Return([]order.CustomerInvoice{}, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{}, nil)

		pnl, err := f.service.GetOrderPnL(ctx, o.ID)
		require.NoError(t, err)

		// 1000 USD at 7.2
		assert.True(t, pnl.EstimatedRevenue.Equal(decimal.NewFromInt(7200)))
	})

	t.Run("factory invoice burdens the order net of VAT refund", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := newTestOrder(t)

		prod, err := production.NewProductionOrder("PO-2026-001", o.ID, "ST-100", "Navy",
			"Ningbo Garments", decimal.NewFromInt(1000))
		require.NoError(t, err)
		// invoice 1000 pcs at 5.00 with a 13% refund: net 4350, refund 650
		require.NoError(t, prod.RecordInvoice(decimal.NewFromInt(1000), decimal.NewFromInt(5),
			valueobject.CNY, decimal.NewFromInt(13)))

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.invoices.On("FindIssuedByOrder", mock.Anything, o.ID).Return([]order.CustomerInvoice{}, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{*prod}, nil)

		pnl, err := f.service.GetOrderPnL(ctx, o.ID)
		require.NoError(t, err)

		assert.True(t, pnl.ProductionCostTotal.Equal(decimal.NewFromInt(4350)))
		assert.True(t, pnl.VATRefundTotal.Equal(decimal.NewFromInt(650)))
		assert.True(t, pnl.EstimatedProfit.Equal(decimal.NewFromInt(5650)))
	})

	t.Run("production order without invoice contributes nothing", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o := newTestOrder(t)

		prod, err := production.NewProductionOrder("PO-2026-002", o.ID, "ST-100", "Navy",
			"Ningbo Garments", decimal.NewFromInt(1000))
		require.NoError(t, err)

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.invoices.On("FindIssuedByOrder", mock.Anything, o.ID).Return([]order.CustomerInvoice{}, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{*prod}, nil)

		pnl, err := f.service.GetOrderPnL(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, pnl.ProductionCostTotal.IsZero())
	})

	t.Run("zero revenue yields zero margin", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o, err := order.NewCustomerOrder("SO-2026-003", "Acme Apparel", valueobject.CNY,
			decimal.NewFromInt(1), order.ShippingTermsFOB,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.invoices.On("FindIssuedByOrder", mock.Anything, o.ID).Return([]order.CustomerInvoice{}, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{
			newLedgerEntry(t, o.ID, nil, 500, 0),
		}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{}, nil)

		pnl, err := f.service.GetOrderPnL(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, pnl.EstimatedMargin.IsZero())
		assert.True(t, pnl.EstimatedProfit.Equal(decimal.NewFromInt(-500)))
	})

	t.Run("unknown order returns not found", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		id := uuid.New()
		f.orders.On("FindByID", mock.Anything, id).Return(nil, nil)

		_, err := f.service.GetOrderPnL(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderPnLService_GetOrderPnLByColor(t *testing.T) {
	ctx := context.Background()

	t.Run("costs split by color with unallocated bucket last", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o, err := order.NewCustomerOrder("SO-2026-010", "Acme Apparel", valueobject.CNY,
			decimal.NewFromInt(1), order.ShippingTermsFOB,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		navy, err := o.AddItem("ST-100", "Tee", "Navy", decimal.NewFromInt(600), decimal.NewFromInt(10))
		require.NoError(t, err)
		white, err := o.AddItem("ST-100", "Tee", "White", decimal.NewFromInt(400), decimal.NewFromInt(10))
		require.NoError(t, err)

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{
			newLedgerEntry(t, o.ID, &navy.ID, 3000, 0),
			newLedgerEntry(t, o.ID, &white.ID, 2000, 0),
			newLedgerEntry(t, o.ID, nil, 500, 0), // order-level freight
		}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{}, nil)

		result, err := f.service.GetOrderPnLByColor(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, result.Colors, 3)

		assert.Equal(t, "Navy", result.Colors[0].Color)
		assert.True(t, result.Colors[0].Revenue.Equal(decimal.NewFromInt(6000)))
		assert.True(t, result.Colors[0].Costs.Equal(decimal.NewFromInt(3000)))
		assert.True(t, result.Colors[0].Profit.Equal(decimal.NewFromInt(3000)))
		assert.True(t, result.Colors[0].Margin.Equal(decimal.NewFromInt(50)))

		assert.Equal(t, "White", result.Colors[1].Color)
		assert.True(t, result.Colors[1].Revenue.Equal(decimal.NewFromInt(4000)))
		assert.True(t, result.Colors[1].Costs.Equal(decimal.NewFromInt(2000)))

		last := result.Colors[2]
		assert.Equal(t, UnallocatedColor, last.Color)
		assert.True(t, last.Revenue.IsZero())
		assert.True(t, last.Costs.Equal(decimal.NewFromInt(500)))
		assert.True(t, last.Margin.IsZero())
	})

	t.Run("production cost lands on its color", func(t *testing.T) {
		f := newOrderServiceFixture(t)
		o, err := order.NewCustomerOrder("SO-2026-011", "Acme Apparel", valueobject.CNY,
			decimal.NewFromInt(1), order.ShippingTermsFOB,
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = o.AddItem("ST-100", "Tee", "Navy", decimal.NewFromInt(1000), decimal.NewFromInt(10))
		require.NoError(t, err)

		prod, err := production.NewProductionOrder("PO-2026-010", o.ID, "ST-100", "Navy",
			"Ningbo Garments", decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.NoError(t, prod.RecordInvoice(decimal.NewFromInt(1000), decimal.NewFromInt(4),
			valueobject.CNY, decimal.Zero))

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.costEntries.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]costing.OrderCostEntry{}, nil)
		f.production.On("FindByCustomerOrder", mock.Anything, o.ID).Return([]production.ProductionOrder{*prod}, nil)

		result, err := f.service.GetOrderPnLByColor(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, result.Colors, 1)
		assert.Equal(t, "Navy", result.Colors[0].Color)
		assert.True(t, result.Colors[0].Costs.Equal(decimal.NewFromInt(4000)))
	})
}
