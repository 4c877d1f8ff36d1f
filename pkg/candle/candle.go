// Package candle holds the OHLCV series the strategy runtime reads and the
// named indicator arrays a strategy attaches to it during population.
package candle

import (
	"fmt"

	"github.com/quantcore/engine/pkg/decimal"
)

// TradingPair identifies a base/quote instrument, compared by value
// equality of both fields.
type TradingPair struct {
	Base  string
	Quote string
}

// Equal reports whether p and other name the same pair.
func (p TradingPair) Equal(other TradingPair) bool {
	return p.Base == other.Base && p.Quote == other.Quote
}

// String renders the pair as "BASE/QUOTE".
func (p TradingPair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// Candle is a single OHLCV bucket.
type Candle struct {
	Timestamp decimal.Timestamp
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// Validate checks the OHLCV invariants: low <= open,close <= high,
// low <= high, volume >= 0.
func (c Candle) Validate() error {
	if c.Low.GreaterThan(c.Open) || c.Open.GreaterThan(c.High) {
		return fmt.Errorf("candle: open %s out of [low %s, high %s]", c.Open, c.Low, c.High)
	}
	if c.Low.GreaterThan(c.Close) || c.Close.GreaterThan(c.High) {
		return fmt.Errorf("candle: close %s out of [low %s, high %s]", c.Close, c.Low, c.High)
	}
	if c.Low.GreaterThan(c.High) {
		return fmt.Errorf("candle: low %s greater than high %s", c.Low, c.High)
	}
	if c.Volume.IsNegative() {
		return fmt.Errorf("candle: negative volume %s", c.Volume)
	}
	return nil
}
