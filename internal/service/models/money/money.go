// Package money holds exact currency amounts.
//
// Amounts are fixed-point decimals; no float64 ever touches a price.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits used when an amount is presented
// or handed to the payment gateway.
const Scale = 2

// Amount is a monetary value without currency.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{d: decimal.Zero}

// MaxStored is the largest amount the order tables can hold (NUMERIC(12,2)).
var MaxStored = Amount{d: decimal.New(999999999999, -Scale)}

// New creates an amount from a decimal.
func New(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// FromCents creates an amount from minor units.
func FromCents(cents int64) Amount {
	return Amount{d: decimal.New(cents, -Scale)}
}

// MustParse parses s and panics on malformed input. Intended for tests and constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return a
}

// Parse parses a decimal string such as "12.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("failed to parse amount %q: %w", s, err)
	}

	return Amount{d: d}, nil
}

// Decimal returns the underlying decimal.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// MulQty returns a multiplied by an item quantity.
func (a Amount) MulQty(qty int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Equal reports whether the two amounts are numerically equal, ignoring scale.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool {
	return a.d.GreaterThan(b.d)
}

// IsPositive reports a > 0.
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// IsNegative reports a < 0.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// IsZero reports a == 0.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// MinorUnits converts the amount to integer cents, rounding half away from zero.
func (a Amount) MinorUnits() int64 {
	return a.d.Round(Scale).Shift(Scale).IntPart()
}

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(Scale)
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}

	return total
}

// MarshalJSON encodes the amount as a JSON string to avoid float rounding on clients.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.d.UnmarshalJSON(data)
}
