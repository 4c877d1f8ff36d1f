package candle

import (
	"fmt"

	"github.com/quantcore/engine/pkg/decimal"
)

// Errors returned by Candles mutation methods.
var (
	ErrUnalignedTimestamp      = fmt.Errorf("candle: timestamp not aligned to timeframe")
	ErrNonMonotonicTimestamp   = fmt.Errorf("candle: timestamp not strictly increasing")
	ErrIndicatorLengthMismatch = fmt.Errorf("candle: indicator array length mismatch")
	ErrEmptyCandleList         = fmt.Errorf("candle: series is empty")
	ErrIndexOutOfRange         = fmt.Errorf("candle: index out of range")
	ErrBoundedSeriesMutation   = fmt.Errorf("candle: cannot set an indicator on a bounded view")
)

// Candles is an ordered, append-only OHLCV sequence keyed by timestamp,
// every timestamp aligned to its timeframe, plus a set of named
// indicator arrays parallel to the candle slice. Candles exclusively owns
// its indicator arrays. Append rejects unaligned and non-increasing
// timestamps; it does not reject a gap of more than one timeframe
// between consecutive candles.
//
// A Candles value may be a bounded view produced by Bounded: it shares
// the same backing candle and indicator storage as the series it was
// carved from, but every accessor (At, Len, IndicatorAt, UpTo) reports
// indices past the bound as out of range. This is the mechanism the
// engine uses to hand a strategy a view of the series that cannot
// observe candles after the one it is deciding on.
type Candles struct {
	pair       TradingPair
	timeframe  decimal.Timeframe
	candles    []Candle
	indicators map[string][]decimal.Decimal

	bounded    bool
	boundedLen int // valid indices are [0, boundedLen); only meaningful when bounded
}

// NewCandles creates an empty series for the given pair and timeframe.
func NewCandles(pair TradingPair, timeframe decimal.Timeframe) *Candles {
	return &Candles{
		pair:       pair,
		timeframe:  timeframe,
		candles:    make([]Candle, 0),
		indicators: make(map[string][]decimal.Decimal),
	}
}

// Pair returns the series' trading pair.
func (c *Candles) Pair() TradingPair { return c.pair }

// Timeframe returns the series' timeframe.
func (c *Candles) Timeframe() decimal.Timeframe { return c.timeframe }

// Len returns the number of candles visible through this view.
func (c *Candles) Len() int { return c.effectiveLen() }

func (c *Candles) effectiveLen() int {
	if c.bounded && c.boundedLen < len(c.candles) {
		return c.boundedLen
	}
	return len(c.candles)
}

// Bounded returns a view of c restricted to indices [0, i] inclusive:
// At, IndicatorAt, Len, and UpTo on the returned view behave exactly as
// they would on c, except that any index greater than i is reported out
// of range. The view shares c's underlying candle and indicator slices;
// carving it does not copy candle data.
//
// Bounding is one-directional: bounding an already-bounded view can only
// narrow it further, never widen it.
func (c *Candles) Bounded(i int) (*Candles, error) {
	if i < 0 || i >= c.effectiveLen() {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, c.effectiveLen())
	}
	return &Candles{
		pair:       c.pair,
		timeframe:  c.timeframe,
		candles:    c.candles,
		indicators: c.indicators,
		bounded:    true,
		boundedLen: i + 1,
	}, nil
}

// Append adds a candle to the end of the series. The candle's timestamp
// must align to the series' timeframe and be strictly greater than the
// last appended candle's timestamp.
func (c *Candles) Append(candle Candle) error {
	if err := candle.Validate(); err != nil {
		return err
	}

	aligned, err := candle.Timestamp.IsAligned(c.timeframe)
	if err != nil {
		return err
	}
	if !aligned {
		return fmt.Errorf("%w: %s", ErrUnalignedTimestamp, candle.Timestamp)
	}

	if len(c.candles) > 0 {
		last := c.candles[len(c.candles)-1]
		if !candle.Timestamp.After(last.Timestamp) {
			return fmt.Errorf("%w: %s does not follow %s", ErrNonMonotonicTimestamp, candle.Timestamp, last.Timestamp)
		}
	}

	c.candles = append(c.candles, candle)
	return nil
}

// At returns the candle at index i.
func (c *Candles) At(i int) (Candle, error) {
	if i < 0 || i >= c.effectiveLen() {
		return Candle{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, c.effectiveLen())
	}
	return c.candles[i], nil
}

// UpTo returns the candle sub-series candles[0..i] inclusive, nothing
// after. Bounded the same way At is: i cannot exceed this view's own
// bound even if the underlying series is longer.
func (c *Candles) UpTo(i int) ([]Candle, error) {
	if i < 0 || i >= c.effectiveLen() {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, c.effectiveLen())
	}
	return c.candles[:i+1], nil
}

// SetIndicator attaches a named indicator array. Its length must equal
// the candle count. It cannot be called on a bounded view: indicators
// are populated once, on the full series, before the engine starts
// carving bounded views for individual candles.
func (c *Candles) SetIndicator(name string, values []decimal.Decimal) error {
	if c.bounded {
		return ErrBoundedSeriesMutation
	}
	if len(values) != len(c.candles) {
		return fmt.Errorf("%w: indicator %q has %d values, series has %d candles", ErrIndicatorLengthMismatch, name, len(values), len(c.candles))
	}
	c.indicators[name] = values
	return nil
}

// Indicator returns the named indicator array and whether it exists,
// truncated to this view's bound.
func (c *Candles) Indicator(name string) ([]decimal.Decimal, bool) {
	v, ok := c.indicators[name]
	if !ok {
		return nil, false
	}
	n := c.effectiveLen()
	if n < len(v) {
		v = v[:n]
	}
	return v, true
}

// IndicatorAt returns the named indicator's value at index i. The value
// is decimal.NaN while the indicator is still warming up at i; an
// unknown indicator name or an index outside this view is an error.
func (c *Candles) IndicatorAt(name string, i int) (decimal.Decimal, error) {
	values, ok := c.indicators[name]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("candle: unknown indicator %q", name)
	}
	n := c.effectiveLen()
	if n > len(values) {
		n = len(values)
	}
	if i < 0 || i >= n {
		return decimal.Decimal{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, n)
	}
	return values[i], nil
}

// IndicatorNames returns the names of all attached indicator arrays.
func (c *Candles) IndicatorNames() []string {
	names := make([]string, 0, len(c.indicators))
	for name := range c.indicators {
		names = append(names, name)
	}
	return names
}
