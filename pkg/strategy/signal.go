// Package strategy defines the polymorphic strategy contract the backtest
// and live runtimes drive: a strategy only ever sees candle history up to
// and including the current index, and only ever speaks back through
// Signal and position-size decisions.
package strategy

import (
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// SignalType names the decision a strategy emits for a candle.
type SignalType string

// The closed set of signals a strategy may emit. EntryLong/EntryShort open
// a new position; ExitLong/ExitShort close one; Hold takes no action.
const (
	EntryLong  SignalType = "entry_long"
	EntryShort SignalType = "entry_short"
	ExitLong   SignalType = "exit_long"
	ExitShort  SignalType = "exit_short"
	Hold       SignalType = "hold"
)

// Side is a position direction, shared by Signal and Position.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// IndicatorSnapshot is a single named indicator reading captured at signal
// time, for reporting why a trade happened.
type IndicatorSnapshot struct {
	Name  string
	Value decimal.Decimal
}

// SignalMetadata is the human-readable explanation a signal carries.
// Signal exclusively owns its metadata.
type SignalMetadata struct {
	Reason     string
	Indicators []IndicatorSnapshot
}

// Signal is a strategy's decision for a single candle.
type Signal struct {
	Type      SignalType
	Pair      candle.TradingPair
	Side      Side
	Price     decimal.Decimal
	Strength  float64 // in [0,1]; signal confidence, not money
	Timestamp decimal.Timestamp
	Metadata  SignalMetadata
}

// NewHold returns the zero-effort signal strategies emit on most candles.
func NewHold() Signal {
	return Signal{Type: Hold}
}

// IsEntry reports whether s opens a new position.
func (s Signal) IsEntry() bool {
	return s.Type == EntryLong || s.Type == EntryShort
}

// IsExit reports whether s closes an existing position.
func (s Signal) IsExit() bool {
	return s.Type == ExitLong || s.Type == ExitShort
}

// SideOf returns the position side implied by an entry or exit signal
// type. Hold has no side; callers must not call this for Hold signals.
func (t SignalType) SideOf() Side {
	switch t {
	case EntryLong, ExitLong:
		return Long
	case EntryShort, ExitShort:
		return Short
	default:
		return ""
	}
}
