// Package decimal provides the fixed-point money type used everywhere
// balances, prices, and sizes flow through the engine. Binary floats never
// represent currency here; they are reserved for ratios, signal strength,
// and indicator outputs.
package decimal

import (
	"fmt"

	shopspring "github.com/shopspring/decimal"
)

// Decimal is an exact, arbitrary-precision fixed-point number. It wraps
// shopspring/decimal rather than re-exporting it so FromFloat stays the
// only lossy entry point into the type.
//
// Decimal also carries a NaN sentinel used exclusively by indicator arrays
// (pkg/candle.Candles) to mark warm-up positions before an indicator has
// enough history to produce a value; it has no other legitimate use and
// participates in no arithmetic — callers must check IsNaN before reading
// an indicator value.
type Decimal struct {
	d   shopspring.Decimal
	nan bool
}

var (
	// ErrDivisionByZero is returned by Div when the divisor is zero.
	ErrDivisionByZero = fmt.Errorf("decimal: division by zero")
	// ErrInvalidString is returned by FromString when the input cannot be parsed.
	ErrInvalidString = fmt.Errorf("decimal: invalid string")
)

// Zero is the additive identity.
var Zero = Decimal{d: shopspring.Zero}

// NaN returns the warm-up sentinel value for indicator arrays.
func NaN() Decimal {
	return Decimal{nan: true}
}

// IsNaN reports whether d is the indicator warm-up sentinel.
func (d Decimal) IsNaN() bool {
	return d.nan
}

// FromInt builds a Decimal from an int64, exactly.
func FromInt(v int64) Decimal {
	return Decimal{d: shopspring.NewFromInt(v)}
}

// FromFloat builds a Decimal from a float64. This is the only lossy
// constructor in the package; callers feeding in money should prefer
// FromString or FromInt.
func FromFloat(v float64) Decimal {
	return Decimal{d: shopspring.NewFromFloat(v)}
}

// FromString parses a base-10 string such as "123.456" into a Decimal.
func FromString(s string) (Decimal, error) {
	d, err := shopspring.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q: %v", ErrInvalidString, s, err)
	}
	return Decimal{d: d}, nil
}

// MustFromString is FromString but panics on error; intended for literals
// in tests and constant tables, never for externally supplied input.
func MustFromString(s string) Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{d: d.d.Add(other.d)}
}

// Sub returns d - other.
func (d Decimal) Sub(other Decimal) Decimal {
	return Decimal{d: d.d.Sub(other.d)}
}

// Mul returns d * other.
func (d Decimal) Mul(other Decimal) Decimal {
	return Decimal{d: d.d.Mul(other.d)}
}

// Div returns d / other. Division by zero is a signalled error, not a panic.
func (d Decimal) Div(other Decimal) (Decimal, error) {
	if other.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}
	return Decimal{d: d.d.Div(other.d)}, nil
}

// Cmp returns -1, 0, or 1 depending on whether d is less than, equal to,
// or greater than other.
func (d Decimal) Cmp(other Decimal) int {
	return d.d.Cmp(other.d)
}

// Eql reports whether d and other represent the same value.
func (d Decimal) Eql(other Decimal) bool {
	return d.d.Equal(other.d)
}

// GreaterThan reports whether d > other.
func (d Decimal) GreaterThan(other Decimal) bool {
	return d.d.GreaterThan(other.d)
}

// GreaterThanOrEqual reports whether d >= other.
func (d Decimal) GreaterThanOrEqual(other Decimal) bool {
	return d.d.GreaterThanOrEqual(other.d)
}

// LessThan reports whether d < other.
func (d Decimal) LessThan(other Decimal) bool {
	return d.d.LessThan(other.d)
}

// LessThanOrEqual reports whether d <= other.
func (d Decimal) LessThanOrEqual(other Decimal) bool {
	return d.d.LessThanOrEqual(other.d)
}

// IsZero reports whether d is exactly zero.
func (d Decimal) IsZero() bool {
	return d.d.IsZero()
}

// IsNegative reports whether d is strictly less than zero.
func (d Decimal) IsNegative() bool {
	return d.d.IsNegative()
}

// IsPositive reports whether d is strictly greater than zero.
func (d Decimal) IsPositive() bool {
	return d.d.IsPositive()
}

// Abs returns the absolute value of d.
func (d Decimal) Abs() Decimal {
	return Decimal{d: d.d.Abs()}
}

// Neg returns -d.
func (d Decimal) Neg() Decimal {
	return Decimal{d: d.d.Neg()}
}

// ToFloat converts d to a float64 for reporting only; never feed the
// result back into money arithmetic.
func (d Decimal) ToFloat() float64 {
	f, _ := d.d.Float64()
	return f
}

// String renders d in base-10, round-tripping through FromString.
func (d Decimal) String() string {
	if d.nan {
		return "NaN"
	}
	return d.d.String()
}

// Min returns the smaller of a and b.
func Min(a, b Decimal) Decimal {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Decimal) Decimal {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// Clamp restricts d to the closed interval [lo, hi].
func Clamp(d, lo, hi Decimal) Decimal {
	return Max(lo, Min(d, hi))
}
