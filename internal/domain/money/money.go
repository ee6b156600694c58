// Package money provides an exact-arithmetic monetary value object.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/coursery/coursery/internal/domain/errs"
)

const currencyCodeLength = 3

// Money is an immutable amount in a single currency. Arithmetic never uses
// floats; amounts are decimal to keep revenue folds exact.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money value. The amount must be non-negative and the
// currency a 3-letter code such as "USD".
func New(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != currencyCodeLength {
		return Money{}, fmt.Errorf("%w: currency must be a 3-letter code", errs.ErrInvalidInput)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount cannot be negative", errs.ErrInvalidInput)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewFromString parses a decimal string amount, e.g. "100.00".
func NewFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %s is not a valid amount", errs.ErrInvalidInput, amount)
	}
	return New(d, currency)
}

// Zero returns a zero amount in the given currency.
// It panics on an invalid currency code; use it with literal codes only.
func Zero(currency string) Money {
	m, err := New(decimal.Zero, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the 3-letter currency code.
func (m Money) Currency() string {
	return m.currency
}

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", errs.ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of two amounts in the same currency.
// The result may not go negative.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", errs.ErrCurrencyMismatch, m.currency, other.currency)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("%w: result cannot be negative", errs.ErrInvalidInput)
	}
	return Money{amount: result, currency: m.currency}, nil
}

// Multiply scales the amount by a non-negative factor.
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%w: factor cannot be negative", errs.ErrInvalidInput)
	}
	return Money{amount: m.amount.Mul(factor), currency: m.currency}, nil
}

// Equals reports whether two values have the same amount and currency.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String renders the value as "100.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MarshalJSON renders the value as {"amount":"100.00","currency":"USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON parses and validates a JSON money object.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := New(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
