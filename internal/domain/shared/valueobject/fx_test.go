package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExchangeRate(t *testing.T) {
	t.Run("creates rate between distinct currencies", func(t *testing.T) {
		r, err := NewExchangeRate(USD, CNY, decimal.NewFromFloat(7.2))
		require.NoError(t, err)
		assert.Equal(t, USD, r.Currency())
		assert.Equal(t, CNY, r.Base())
		assert.False(t, r.IsIdentity())
	})

	t.Run("same currency is always rate 1", func(t *testing.T) {
		r, err := NewExchangeRate(CNY, CNY, decimal.NewFromFloat(99))
		require.NoError(t, err)
		assert.True(t, r.IsIdentity())
		assert.True(t, r.Rate().Equal(decimal.NewFromInt(1)))
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		_, err := NewExchangeRate(USD, CNY, decimal.Zero)
		assert.Error(t, err)

		_, err = NewExchangeRate(USD, CNY, decimal.NewFromInt(-3))
		assert.Error(t, err)
	})

	t.Run("rejects missing currency", func(t *testing.T) {
		_, err := NewExchangeRate("", CNY, decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestExchangeRateToBase(t *testing.T) {
	t.Run("multiplies without rounding", func(t *testing.T) {
		r, err := NewExchangeRate(USD, CNY, decimal.NewFromFloat(7.2))
		require.NoError(t, err)

		got := r.ToBase(decimal.NewFromInt(870))
		assert.True(t, got.Equal(decimal.NewFromInt(6264)))

		got = r.ToBase(decimal.NewFromFloat(0.333))
		assert.Equal(t, "2.3976", got.String())
	})

	t.Run("identity rate returns the amount unchanged", func(t *testing.T) {
		r := IdentityRate(CNY)
		got := r.ToBase(decimal.NewFromFloat(870))
		assert.True(t, got.Equal(decimal.NewFromFloat(870)))
	})
}

func TestExchangeRateToBaseMoney(t *testing.T) {
	r, err := NewExchangeRate(USD, CNY, decimal.NewFromFloat(7.2))
	require.NoError(t, err)

	usd, _ := NewMoneyFromString("100", USD)
	base, err := r.ToBaseMoney(usd)
	require.NoError(t, err)
	assert.Equal(t, CNY, base.Currency())
	assert.True(t, base.Amount().Equal(decimal.NewFromInt(720)))

	cny, _ := NewMoneyFromString("100", CNY)
	_, err = r.ToBaseMoney(cny)
	assert.Error(t, err)
}
