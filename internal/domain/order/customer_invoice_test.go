package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewline/backend/internal/domain/shared/valueobject"
)

func createTestInvoice(t *testing.T) *CustomerInvoice {
	t.Helper()
	inv, err := NewCustomerInvoice("INV-2026-001", uuid.New(), valueobject.USD, decimal.NewFromInt(9500))
	require.NoError(t, err)
	return inv
}

func TestNewCustomerInvoice(t *testing.T) {
	t.Run("creates draft invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.False(t, inv.Status.CountsAsRevenue())
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewCustomerInvoice("INV-1", uuid.New(), valueobject.USD, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("rejects missing order reference", func(t *testing.T) {
		_, err := NewCustomerInvoice("INV-1", uuid.Nil, valueobject.USD, decimal.NewFromInt(100))
		assert.Error(t, err)
	})
}

func TestCustomerInvoiceLifecycle(t *testing.T) {
	t.Run("issue then pay", func(t *testing.T) {
		inv := createTestInvoice(t)

		require.NoError(t, inv.Issue())
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.NotNil(t, inv.IssuedAt)
		assert.True(t, inv.Status.CountsAsRevenue())

		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCustomerInvoiceIssued, events[0].EventType())

		require.NoError(t, inv.MarkPaid())
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.Status.CountsAsRevenue())
	})

	t.Run("cannot issue twice", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Issue())
		assert.Error(t, inv.Issue())
	})

	t.Run("cannot pay a draft", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Error(t, inv.MarkPaid())
	})

	t.Run("cancelled invoice does not count as revenue", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel())
		assert.False(t, inv.Status.CountsAsRevenue())
		assert.Error(t, inv.Issue())
	})
}
