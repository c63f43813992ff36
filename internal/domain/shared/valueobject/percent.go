package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a value object representing a percentage in the range [0, 100].
// It is immutable - all operations return new Percent instances
type Percent struct {
	value decimal.Decimal
}

// NewPercent creates a new Percent, validating the [0, 100] range
func NewPercent(value decimal.Decimal) (Percent, error) {
	if value.IsNegative() {
		return Percent{}, fmt.Errorf("percent cannot be negative: %s", value)
	}
	if value.GreaterThan(decimal.NewFromInt(100)) {
		return Percent{}, fmt.Errorf("percent cannot exceed 100: %s", value)
	}
	return Percent{value: value}, nil
}

// NewPercentFromFloat creates a Percent from a float64 value
func NewPercentFromFloat(value float64) (Percent, error) {
	return NewPercent(decimal.NewFromFloat(value))
}

// MustNewPercent creates a new Percent, panics on error
func MustNewPercent(value decimal.Decimal) Percent {
	p, err := NewPercent(value)
	if err != nil {
		panic(err)
	}
	return p
}

// ZeroPercent returns a zero-value Percent
func ZeroPercent() Percent {
	return Percent{value: decimal.Zero}
}

// Value returns the raw decimal value (e.g. 12.5 for 12.5%)
func (p Percent) Value() decimal.Decimal {
	return p.value
}

// Fraction returns the value divided by 100 (e.g. 0.125 for 12.5%)
func (p Percent) Fraction() decimal.Decimal {
	return p.value.Div(decimal.NewFromInt(100))
}

// ApplyTo returns amount * percent/100
func (p Percent) ApplyTo(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.value).Div(decimal.NewFromInt(100))
}

// IsZero returns true if the percent is zero
func (p Percent) IsZero() bool {
	return p.value.IsZero()
}

// Equals returns true if both percents have the same value
func (p Percent) Equals(other Percent) bool {
	return p.value.Equal(other.value)
}

// String returns a string representation like "12.5%"
func (p Percent) String() string {
	return p.value.String() + "%"
}
