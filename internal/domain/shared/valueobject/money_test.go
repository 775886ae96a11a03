package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount string, currency Currency) Money {
	t.Helper()
	m, err := NewMoneyFromString(amount, currency)
	require.NoError(t, err)
	return m
}

func TestNewMoney(t *testing.T) {
	t.Run("valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(4380.50), CNY)
		require.NoError(t, err)
		assert.Equal(t, CNY, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(4380.50)))
	})

	t.Run("empty currency is rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.ErrorContains(t, err, "currency cannot be empty")
	})

	t.Run("string form keeps full precision", func(t *testing.T) {
		m := mustMoney(t, "12.3456", USD)
		assert.Equal(t, "12.3456", m.Amount().String())

		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestMoneyPredicates(t *testing.T) {
	assert.True(t, Zero(USD).IsZero())
	assert.Equal(t, USD, Zero(USD).Currency())

	assert.True(t, mustMoney(t, "-870", CNY).IsNegative())
	assert.False(t, mustMoney(t, "870", CNY).IsNegative())
	assert.False(t, mustMoney(t, "870", CNY).IsZero())
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add and subtract within one currency", func(t *testing.T) {
		fabric := mustMoney(t, "4380.50", CNY)
		trims := mustMoney(t, "312.25", CNY)

		total, err := fabric.Add(trims)
		require.NoError(t, err)
		assert.Equal(t, "4692.75", total.Amount().String())

		net, err := total.Subtract(trims)
		require.NoError(t, err)
		assert.True(t, net.Equals(fabric))
	})

	t.Run("mixing currencies fails", func(t *testing.T) {
		cny := mustMoney(t, "100", CNY)
		usd := mustMoney(t, "100", USD)

		_, err := cny.Add(usd)
		assert.ErrorContains(t, err, "cannot add USD to CNY")

		_, err = cny.Subtract(usd)
		assert.ErrorContains(t, err, "cannot subtract USD from CNY")
	})

	t.Run("multiply scales unit price by quantity", func(t *testing.T) {
		unitPrice := mustMoney(t, "14.80", CNY)
		line := unitPrice.Multiply(decimal.NewFromInt(350))
		assert.Equal(t, "5180", line.Amount().String())
		assert.Equal(t, CNY, line.Currency())
	})

	t.Run("round", func(t *testing.T) {
		m := mustMoney(t, "10.12345", CNY)
		assert.Equal(t, "10.12", m.Round(2).Amount().String())
	})
}

func TestMoneyEquals(t *testing.T) {
	assert.True(t, mustMoney(t, "100", CNY).Equals(mustMoney(t, "100.00", CNY)))
	assert.False(t, mustMoney(t, "100", CNY).Equals(mustMoney(t, "100", USD)))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "4380.50 CNY", mustMoney(t, "4380.5", CNY).String())
}

func TestMoneyJSON(t *testing.T) {
	m := mustMoney(t, "99.99", USD)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"99.99","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	t.Run("string value takes the base currency", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("123.45"))
		assert.Equal(t, "123.45", m.Amount().String())
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("nil becomes zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("unsupported type is rejected", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(123))
	})

	t.Run("round-trips through Value", func(t *testing.T) {
		m := mustMoney(t, "5180.00", CNY)
		v, err := m.Value()
		require.NoError(t, err)

		var back Money
		require.NoError(t, back.Scan(v))
		assert.True(t, m.Equals(back))
	})
}
