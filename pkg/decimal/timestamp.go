package decimal

import (
	"fmt"
	"time"
)

// Timestamp is a monotonic millisecond instant. It wraps time.Time rather
// than an int64 so callers get time.Time's comparison and arithmetic for
// free while the engine's external contract stays millisecond-precision.
type Timestamp struct {
	t time.Time
}

// Timeframe names a candle bucket width from a closed set.
type Timeframe string

// Supported timeframes. Candle timestamps must align to one of these.
const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// ErrUnknownTimeframe is returned when a Timeframe value isn't one of the
// supported buckets.
var ErrUnknownTimeframe = fmt.Errorf("decimal: unknown timeframe")

// Duration returns the wall-clock span of one bucket of tf.
func (tf Timeframe) Duration() (time.Duration, error) {
	switch tf {
	case Timeframe1m:
		return time.Minute, nil
	case Timeframe5m:
		return 5 * time.Minute, nil
	case Timeframe15m:
		return 15 * time.Minute, nil
	case Timeframe1h:
		return time.Hour, nil
	case Timeframe4h:
		return 4 * time.Hour, nil
	case Timeframe1d:
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, tf)
	}
}

// Now returns the current instant, truncated to millisecond precision.
func Now() Timestamp {
	return Timestamp{t: time.Now().UTC().Truncate(time.Millisecond)}
}

// FromTime builds a Timestamp from a time.Time, truncated to millisecond
// precision.
func FromTime(t time.Time) Timestamp {
	return Timestamp{t: t.UTC().Truncate(time.Millisecond)}
}

// FromUnixMilli builds a Timestamp from a Unix millisecond count.
func FromUnixMilli(ms int64) Timestamp {
	return Timestamp{t: time.UnixMilli(ms).UTC()}
}

// FromISO8601 parses an RFC3339-compatible string into a Timestamp.
func FromISO8601(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("decimal: invalid ISO-8601 timestamp %q: %w", s, err)
	}
	return FromTime(t), nil
}

// ToISO8601 formats the timestamp as RFC3339 with millisecond precision,
// the inverse of FromISO8601.
func (ts Timestamp) ToISO8601() string {
	return ts.t.Format("2006-01-02T15:04:05.000Z07:00")
}

// UnixMilli returns the Unix millisecond count.
func (ts Timestamp) UnixMilli() int64 {
	return ts.t.UnixMilli()
}

// Time exposes the underlying time.Time for interop with stdlib APIs.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Before reports whether ts occurs strictly before other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.t.Before(other.t)
}

// After reports whether ts occurs strictly after other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.t.After(other.t)
}

// Equal reports whether ts and other represent the same instant.
func (ts Timestamp) Equal(other Timestamp) bool {
	return ts.t.Equal(other.t)
}

// Add returns ts shifted by d.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return FromTime(ts.t.Add(d))
}

// Sub returns the duration between ts and other (ts - other).
func (ts Timestamp) Sub(other Timestamp) time.Duration {
	return ts.t.Sub(other.t)
}

// AlignToKline truncates ts down to the start of the bucket it falls in for
// the given timeframe. Idempotent: aligning an already-aligned timestamp
// returns it unchanged.
func (ts Timestamp) AlignToKline(tf Timeframe) (Timestamp, error) {
	d, err := tf.Duration()
	if err != nil {
		return Timestamp{}, err
	}
	epoch := ts.t.Unix()
	step := int64(d / time.Second)
	aligned := (epoch / step) * step
	return FromTime(time.Unix(aligned, 0).UTC()), nil
}

// IsAligned reports whether ts already sits on a bucket boundary for tf.
func (ts Timestamp) IsAligned(tf Timeframe) (bool, error) {
	aligned, err := ts.AlignToKline(tf)
	if err != nil {
		return false, err
	}
	return ts.Equal(aligned), nil
}

// String renders the timestamp as ISO-8601.
func (ts Timestamp) String() string {
	return ts.ToISO8601()
}
