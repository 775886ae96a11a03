package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExchangeRate converts amounts from a foreign currency into the company
// base currency. The rate is expressed as base-currency units per one unit
// of the foreign currency (e.g. 7.2 CNY per USD).
type ExchangeRate struct {
	currency Currency
	base     Currency
	rate     decimal.Decimal
}

// NewExchangeRate creates an exchange rate from currency into base.
// A same-currency rate is always 1 regardless of the supplied rate.
func NewExchangeRate(currency, base Currency, rate decimal.Decimal) (ExchangeRate, error) {
	if currency == "" || base == "" {
		return ExchangeRate{}, fmt.Errorf("exchange rate requires both currencies, got %q -> %q", currency, base)
	}
	if currency == base {
		return ExchangeRate{currency: currency, base: base, rate: decimal.NewFromInt(1)}, nil
	}
	if !rate.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("exchange rate %s -> %s must be positive, got %s", currency, base, rate)
	}
	return ExchangeRate{currency: currency, base: base, rate: rate}, nil
}

// IdentityRate returns the rate for amounts already in the base currency.
func IdentityRate(base Currency) ExchangeRate {
	return ExchangeRate{currency: base, base: base, rate: decimal.NewFromInt(1)}
}

// Currency returns the foreign currency this rate converts from.
func (r ExchangeRate) Currency() Currency {
	return r.currency
}

// Base returns the base currency this rate converts into.
func (r ExchangeRate) Base() Currency {
	return r.base
}

// Rate returns the raw conversion factor.
func (r ExchangeRate) Rate() decimal.Decimal {
	return r.rate
}

// IsIdentity reports whether the rate is a same-currency conversion.
func (r ExchangeRate) IsIdentity() bool {
	return r.currency == r.base
}

// ToBase converts an amount in the foreign currency into the base currency.
// Full decimal precision is kept; rounding is a presentation concern.
func (r ExchangeRate) ToBase(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.rate)
}

// ToBaseMoney converts a Money in the foreign currency into base-currency Money.
func (r ExchangeRate) ToBaseMoney(m Money) (Money, error) {
	if m.Currency() != r.currency {
		return Money{}, fmt.Errorf("rate converts %s, got amount in %s", r.currency, m.Currency())
	}
	return Money{amount: r.ToBase(m.Amount()), currency: r.base}, nil
}
