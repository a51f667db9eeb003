package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	USD Currency = "USD" // flower export trade settles in USD
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AED Currency = "AED"
	RUB Currency = "RUB"
)

// DefaultCurrency applies when an invoice does not name one.
const DefaultCurrency = USD

// Money pairs a decimal amount with its currency. Values are immutable;
// arithmetic returns a fresh Money and mixed-currency operations fail
// rather than coerce.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney builds a Money, rejecting an empty currency.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses amount as a decimal string.
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyUSD builds a USD Money.
func NewMoneyUSD(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: USD}
}

// NewMoneyUSDFromFloat builds a USD Money from a float64.
func NewMoneyUSDFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: USD}
}

// NewMoneyUSDFromString parses a decimal string as USD.
func NewMoneyUSDFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d, currency: USD}, nil
}

// Zero is the zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroUSD is the zero amount in USD.
func ZeroUSD() Money {
	return Zero(USD)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// with keeps the currency and swaps the amount.
func (m Money) with(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.currency}
}

func (m Money) checkCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency)
	}
	return nil
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency("add", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(other.amount)), nil
}

// MustAdd is Add for callers that already know the currencies match.
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract takes other from m; both must share a currency.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.checkCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Sub(other.amount)), nil
}

// MustSubtract is Subtract for callers that already know the currencies match.
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply scales the amount by factor.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return m.with(m.amount.Mul(factor))
}

// MultiplyByInt scales the amount by an integer factor.
func (m Money) MultiplyByInt(factor int64) Money {
	return m.Multiply(decimal.NewFromInt(factor))
}

// Negate flips the sign.
func (m Money) Negate() Money {
	return m.with(m.amount.Neg())
}

// Abs drops the sign.
func (m Money) Abs() Money {
	return m.with(m.amount.Abs())
}

// Round rounds to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return m.with(m.amount.Round(places))
}

// Equals reports whether amount and currency both match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThan compares two amounts of the same currency.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.checkCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

// GreaterThan compares two amounts of the same currency.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.checkCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String renders the amount at two decimal places, e.g. "125.50 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
