// Package dualma implements a fast/slow EMA crossover strategy: enter
// long on a golden cross (fast EMA moves above slow EMA), exit on a
// death cross (fast EMA moves back below slow EMA). It is the default
// strategy wired into cmd/backtest and exists as a concrete,
// end-to-end IStrategy implementation exercising internal/indicators.
package dualma

import (
	"context"
	"fmt"

	"github.com/quantcore/engine/internal/indicators"
	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategy"
)

const (
	fastEMAName = "ema_fast"
	slowEMAName = "ema_slow"
)

// Config tunes the crossover periods and the fraction of account
// balance committed to each entry.
type Config struct {
	FastPeriod    int
	SlowPeriod    int
	StakeFraction decimal.Decimal // fraction of account balance per entry, in (0,1]
}

// DefaultConfig matches the fast/slow EMA periods commonly used by
// trend-following EMA crossover strategies (9/21).
func DefaultConfig() Config {
	return Config{
		FastPeriod:    9,
		SlowPeriod:    21,
		StakeFraction: decimal.MustFromString("0.1"),
	}
}

// Strategy is a dual-EMA crossover strategy: IStrategy is implemented
// directly, with no surrounding framework.
type Strategy struct {
	cfg    Config
	logger strategy.Logger
	pair   candle.TradingPair
}

// New builds a Strategy for pair under cfg.
func New(pair candle.TradingPair, cfg Config) *Strategy {
	return &Strategy{cfg: cfg, pair: pair}
}

// Init implements strategy.IStrategy.
func (s *Strategy) Init(ctx context.Context, logger strategy.Logger) error {
	s.logger = logger
	s.logger.Info("dual-ma strategy initialized", map[string]any{
		"fast_period": s.cfg.FastPeriod,
		"slow_period": s.cfg.SlowPeriod,
	})
	return nil
}

// Deinit implements strategy.IStrategy.
func (s *Strategy) Deinit() error {
	return nil
}

// PopulateIndicators implements strategy.IStrategy: attaches the fast
// and slow EMA arrays used by both signal methods.
func (s *Strategy) PopulateIndicators(candles *candle.Candles) error {
	mgr := indicators.NewManager()
	if err := mgr.PopulateEMA(candles, fastEMAName, s.cfg.FastPeriod); err != nil {
		return fmt.Errorf("dualma: populate fast ema: %w", err)
	}
	if err := mgr.PopulateEMA(candles, slowEMAName, s.cfg.SlowPeriod); err != nil {
		return fmt.Errorf("dualma: populate slow ema: %w", err)
	}
	return nil
}

// GenerateEntrySignal implements strategy.IStrategy: a golden cross
// (fast EMA crosses from at-or-below to strictly above slow EMA)
// emits a long entry. No signal is emitted before both EMAs have
// warmed up.
func (s *Strategy) GenerateEntrySignal(candles *candle.Candles, i int) (strategy.Signal, bool, error) {
	if i < 1 {
		return strategy.Signal{}, false, nil
	}

	fastNow, slowNow, ok, err := s.crossoverInputs(candles, i)
	if err != nil || !ok {
		return strategy.Signal{}, false, err
	}
	fastPrev, slowPrev, ok, err := s.crossoverInputs(candles, i-1)
	if err != nil || !ok {
		return strategy.Signal{}, false, err
	}

	crossedUp := fastPrev.LessThanOrEqual(slowPrev) && fastNow.GreaterThan(slowNow)
	if !crossedUp {
		return strategy.Signal{}, false, nil
	}

	c, err := candles.At(i)
	if err != nil {
		return strategy.Signal{}, false, err
	}

	return strategy.Signal{
		Type:      strategy.EntryLong,
		Pair:      s.pair,
		Side:      strategy.Long,
		Price:     c.Close,
		Strength:  1.0,
		Timestamp: c.Timestamp,
		Metadata: strategy.SignalMetadata{
			Reason: "golden cross: fast ema crossed above slow ema",
			Indicators: []strategy.IndicatorSnapshot{
				{Name: fastEMAName, Value: fastNow},
				{Name: slowEMAName, Value: slowNow},
			},
		},
	}, true, nil
}

// GenerateExitSignal implements strategy.IStrategy: a death cross
// (fast EMA crosses from at-or-above to strictly below slow EMA)
// closes the open long. MinimalROI, stoploss, and trailing stop are
// evaluated by the engine independently of this signal.
func (s *Strategy) GenerateExitSignal(candles *candle.Candles, i int, position account.Position) (strategy.Signal, bool, error) {
	if i < 1 {
		return strategy.Signal{}, false, nil
	}

	fastNow, slowNow, ok, err := s.crossoverInputs(candles, i)
	if err != nil || !ok {
		return strategy.Signal{}, false, err
	}
	fastPrev, slowPrev, ok, err := s.crossoverInputs(candles, i-1)
	if err != nil || !ok {
		return strategy.Signal{}, false, err
	}

	crossedDown := fastPrev.GreaterThanOrEqual(slowPrev) && fastNow.LessThan(slowNow)
	if !crossedDown {
		return strategy.Signal{}, false, nil
	}

	c, err := candles.At(i)
	if err != nil {
		return strategy.Signal{}, false, err
	}

	return strategy.Signal{
		Type:      strategy.ExitLong,
		Pair:      s.pair,
		Side:      position.Side,
		Price:     c.Close,
		Strength:  1.0,
		Timestamp: c.Timestamp,
		Metadata: strategy.SignalMetadata{
			Reason: "death cross: fast ema crossed below slow ema",
			Indicators: []strategy.IndicatorSnapshot{
				{Name: fastEMAName, Value: fastNow},
				{Name: slowEMAName, Value: slowNow},
			},
		},
	}, true, nil
}

// crossoverInputs reads both EMAs at i, reporting ok=false while
// either is still in its warm-up window (NaN).
func (s *Strategy) crossoverInputs(candles *candle.Candles, i int) (fast, slow decimal.Decimal, ok bool, err error) {
	fast, err = candles.IndicatorAt(fastEMAName, i)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false, err
	}
	slow, err = candles.IndicatorAt(slowEMAName, i)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false, err
	}
	if fast.IsNaN() || slow.IsNaN() {
		return decimal.Decimal{}, decimal.Decimal{}, false, nil
	}
	return fast, slow, true, nil
}

// CalculatePositionSize implements strategy.IStrategy: a fixed fraction
// of the account's current balance, as notional. The engine clamps this
// notional through the risk manager's stake-amount and exposure caps
// before converting it to base-asset units at the fill price — this
// method must not perform that conversion itself.
func (s *Strategy) CalculatePositionSize(signal strategy.Signal, acct *account.Account) (decimal.Decimal, error) {
	if !signal.Price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("dualma: signal price must be positive, got %s", signal.Price)
	}
	return acct.Balance().Mul(s.cfg.StakeFraction), nil
}

// GetParameters implements strategy.IStrategy.
func (s *Strategy) GetParameters() []strategy.Parameter {
	return []strategy.Parameter{
		{Name: "fast_period", Value: decimal.FromInt(int64(s.cfg.FastPeriod))},
		{Name: "slow_period", Value: decimal.FromInt(int64(s.cfg.SlowPeriod))},
		{Name: "stake_fraction", Value: s.cfg.StakeFraction},
	}
}

// GetMetadata implements strategy.IStrategy.
func (s *Strategy) GetMetadata() strategy.StrategyMetadata {
	roi, _ := strategy.NewMinimalROI([]strategy.ROIStep{
		{TimeMinutes: 0, ProfitRatio: decimal.MustFromString("0.10")},
		{TimeMinutes: 60, ProfitRatio: decimal.MustFromString("0.04")},
		{TimeMinutes: 240, ProfitRatio: decimal.MustFromString("0.02")},
	})

	return strategy.StrategyMetadata{
		Name:               "dual-ma",
		Version:            "0.1.0",
		Author:             "quantcore",
		Description:        "Fast/slow EMA crossover with a minimal-ROI exit ladder",
		StrategyType:       "trend-following",
		StartupCandleCount: s.cfg.SlowPeriod,
		MinimalROI:         roi,
		Stoploss:           decimal.MustFromString("-0.10"),
	}
}
