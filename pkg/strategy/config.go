package strategy

import (
	"fmt"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// Parameter is a single named, tunable strategy value, returned by
// GetParameters for reporting and (future) optimization.
type Parameter struct {
	Name  string
	Value decimal.Decimal
}

// StrategyConfig holds the trading parameters a strategy instance is
// configured with. It owns copies of its parameter list and ROI
// schedule; Metadata is referenced, not copied.
type StrategyConfig struct {
	Pair          candle.TradingPair
	Timeframe     decimal.Timeframe
	MaxOpenTrades int
	StakeAmount   decimal.Decimal
	TrailingStop  *TrailingStopConfig
	Parameters    []Parameter
	Metadata      StrategyMetadata
}

// Validate checks non-empty name/version (delegated to Metadata), a
// positive max_open_trades and stake_amount, and trailing-stop
// consistency if configured.
func (c StrategyConfig) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return err
	}
	if c.MaxOpenTrades <= 0 {
		return fmt.Errorf("%w: max_open_trades must be positive, got %d", ErrInvalidParameter, c.MaxOpenTrades)
	}
	if !c.StakeAmount.IsPositive() {
		return fmt.Errorf("%w: stake_amount must be positive, got %s", ErrInvalidParameter, c.StakeAmount)
	}
	if c.TrailingStop != nil {
		if err := c.TrailingStop.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MaxTotalExposure derives the aggregate exposure cap the risk manager
// enforces: stake_amount x max_open_trades.
func (c StrategyConfig) MaxTotalExposure() decimal.Decimal {
	return c.StakeAmount.Mul(decimal.FromInt(int64(c.MaxOpenTrades)))
}

// Copy returns a deep-enough copy of c: the Parameters slice is cloned
// so callers cannot mutate the config's owned copy through the return
// value, matching the "owns copies" invariant.
func (c StrategyConfig) Copy() StrategyConfig {
	cp := c
	cp.Parameters = make([]Parameter, len(c.Parameters))
	copy(cp.Parameters, c.Parameters)
	return cp
}
