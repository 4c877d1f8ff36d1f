// Package backtest drives a single IStrategy through a single candle
// series for one pair: strategy init, indicator population, then the
// deterministic per-candle exit-before-entry-before-mark loop.
package backtest

import (
	"context"
	"fmt"

	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/execution"
	"github.com/quantcore/engine/pkg/marketdata"
	"github.com/quantcore/engine/pkg/portfolio"
	"github.com/quantcore/engine/pkg/risk"
	"github.com/quantcore/engine/pkg/strategy"
)

// ErrInvariantViolation marks an arithmetic or bookkeeping error that
// must terminate the run rather than merely skip a candle: these
// indicate a bug in the engine, not a strategy misbehaving.
var ErrInvariantViolation = fmt.Errorf("backtest: invariant violation")

// Engine runs a single strategy, single pair backtest. It is
// single-threaded and not safe for concurrent use; run disjoint engines
// for disjoint pairs.
type Engine struct {
	strategy strategy.IStrategy
	config   strategy.StrategyConfig

	acct      *account.Account
	positions *portfolio.Manager
	risk      risk.Manager
	executor  *execution.Executor
	market    *marketdata.Provider
	logger    strategy.Logger

	currentPrice decimal.Decimal
	peaks        map[string]decimal.Decimal // position ID -> favorable-extreme price since entry
}

// NewEngine builds an Engine for strat under cfg, starting from
// initialBalance. The executor runs in simulation mode, filling
// immediately at the engine's current candle price.
func NewEngine(strat strategy.IStrategy, cfg strategy.StrategyConfig, initialBalance decimal.Decimal, logger strategy.Logger) *Engine {
	e := &Engine{
		strategy:  strat,
		config:    cfg.Copy(),
		acct:      account.NewAccount(initialBalance),
		positions: portfolio.NewManager(),
		risk:      risk.NewManager(cfg.MaxOpenTrades, cfg.StakeAmount),
		market:    marketdata.NewProvider(),
		logger:    logger,
		peaks:     make(map[string]decimal.Decimal),
	}
	e.executor = execution.NewSimulationExecutor(func() decimal.Decimal { return e.currentPrice })
	return e
}

// Run executes the full candle series: strategy init, indicator
// population once, then for each candle the exit phase, the entry
// phase, and a mark-to-market sample, in that order.
//
// Strategy-callback and order-validation errors are logged and the
// offending candle's action is skipped; the run continues. Arithmetic
// or bookkeeping invariant violations abort the run and are returned
// wrapped in ErrInvariantViolation, identifying the failing candle index.
func (e *Engine) Run(ctx context.Context, candles *candle.Candles) (*Result, error) {
	if candles.Len() == 0 {
		return nil, candle.ErrEmptyCandleList
	}

	if err := e.strategy.Init(ctx, e.logger); err != nil {
		return nil, fmt.Errorf("backtest: strategy init: %w", err)
	}
	defer func() {
		if err := e.strategy.Deinit(); err != nil {
			e.logger.Warn("strategy deinit failed", map[string]any{"error": err.Error()})
		}
	}()

	if err := e.strategy.PopulateIndicators(candles); err != nil {
		return nil, fmt.Errorf("backtest: populate indicators: %w", err)
	}

	for i := 0; i < candles.Len(); i++ {
		select {
		case <-ctx.Done():
			return e.buildResult(), ctx.Err()
		default:
		}

		c, err := candles.At(i)
		if err != nil {
			return e.buildResult(), fmt.Errorf("%w: candle %d: %v", ErrInvariantViolation, i, err)
		}

		e.currentPrice = c.Close
		e.market.UpdatePrice(e.config.Pair, c.Close)

		// view is bounded to [0, i]: it is what the strategy sees this
		// candle, so it cannot observe anything after i regardless of how
		// far candles itself extends.
		view, err := candles.Bounded(i)
		if err != nil {
			return e.buildResult(), fmt.Errorf("%w: candle %d: %v", ErrInvariantViolation, i, err)
		}

		if err := e.runExitPhase(view, i, c); err != nil {
			return e.buildResult(), fmt.Errorf("%w: candle %d: %v", ErrInvariantViolation, i, err)
		}

		e.runEntryPhase(ctx, view, i, c)

		unrealized := e.positions.TotalUnrealizedPnL(map[string]decimal.Decimal{
			e.config.Pair.String(): c.Close,
		})
		e.acct.MarkToMarket(c.Timestamp, unrealized)
	}

	return e.buildResult(), nil
}

// runExitPhase evaluates, in order, a strategy exit signal, MinimalROI,
// stoploss, and trailing stop against the pair's open position (if
// any). The first check to trigger closes the position; at most one
// exit happens per candle. Returns a non-nil error only for arithmetic
// or bookkeeping invariant violations that must terminate the run.
func (e *Engine) runExitPhase(candles *candle.Candles, i int, c candle.Candle) error {
	pos, ok := e.positions.GetPosition(e.config.Pair)
	if !ok {
		return nil
	}

	reason, trigger, err := e.evaluateExit(candles, i, c, pos)
	if err != nil {
		return err
	}
	if !trigger {
		return nil
	}

	closedPos, err := e.positions.ClosePosition(e.config.Pair, c.Close, c.Timestamp)
	if err != nil {
		return fmt.Errorf("close matched open position: %w", err)
	}
	if closedPos.RealizedPnL == nil {
		return fmt.Errorf("closed position missing realized pnl")
	}
	if err := e.acct.Realize(*closedPos.RealizedPnL); err != nil {
		return fmt.Errorf("realize closed position pnl: %w", err)
	}
	delete(e.peaks, closedPos.ID)

	e.logger.Info("position closed", map[string]any{
		"pair":   e.config.Pair.String(),
		"reason": reason,
		"pnl":    closedPos.RealizedPnL.String(),
	})
	return nil
}

// evaluateExit checks the exit ladder in priority order: strategy signal,
// MinimalROI, stoploss, trailing stop. It returns the first one that
// triggers. A strategy-callback error is logged and treated as "no
// exit this candle" — not an invariant violation.
func (e *Engine) evaluateExit(candles *candle.Candles, i int, c candle.Candle, pos account.Position) (reason string, trigger bool, err error) {
	sig, ok, sigErr := e.strategy.GenerateExitSignal(candles, i, pos)
	if sigErr != nil {
		e.logger.Warn("exit signal generation failed, skipping exit phase", map[string]any{"error": sigErr.Error()})
		return "", false, nil
	}
	if ok && sig.IsExit() {
		return "strategy_signal", true, nil
	}

	metadata := e.config.Metadata

	ret, retErr := pos.UnrealizedReturn(c.Close)
	if retErr != nil {
		return "", false, fmt.Errorf("unrealized return: %w", retErr)
	}

	elapsed := pos.ElapsedMinutes(c.Timestamp)
	if step, found := metadata.MinimalROI.Threshold(elapsed); found {
		if ret.GreaterThanOrEqual(step.ProfitRatio) {
			return "minimal_roi", true, nil
		}
	}

	if ret.LessThanOrEqual(metadata.Stoploss) {
		return "stoploss", true, nil
	}

	if metadata.TrailingStop != nil {
		trigger, err := e.evaluateTrailingStop(pos, c.Close, *metadata.TrailingStop)
		if err != nil {
			return "", false, err
		}
		if trigger {
			return "trailing_stop", true, nil
		}
	}

	return "", false, nil
}

// evaluateTrailingStop tracks the favorable-extreme price since entry
// (initialized at the entry price itself) and triggers once price has
// both activated the trail and retraced by the configured offset.
func (e *Engine) evaluateTrailingStop(pos account.Position, currentPrice decimal.Decimal, cfg strategy.TrailingStopConfig) (bool, error) {
	peak, ok := e.peaks[pos.ID]
	if !ok {
		peak = pos.EntryPrice
	}

	switch pos.Side {
	case strategy.Long:
		peak = decimal.Max(peak, currentPrice)
	case strategy.Short:
		peak = decimal.Min(peak, currentPrice)
	}
	e.peaks[pos.ID] = peak

	activation, err := favorableMove(pos.Side, pos.EntryPrice, peak)
	if err != nil {
		return false, err
	}
	if activation.LessThan(cfg.ActivatePercent) {
		return false, nil
	}

	move, err := favorableMove(pos.Side, peak, currentPrice)
	if err != nil {
		return false, err
	}
	retrace := move.Neg()
	// retrace is how far price has pulled back from the peak, as a
	// fraction of the peak; trigger once it reaches the offset.
	return retrace.GreaterThanOrEqual(cfg.OffsetPercent), nil
}

// favorableMove returns (to - from) / from scaled so it is positive
// when movement from "from" to "to" is favorable for side. For a long,
// that's a rise; for a short, a fall.
func favorableMove(side strategy.Side, from, to decimal.Decimal) (decimal.Decimal, error) {
	var diff decimal.Decimal
	switch side {
	case strategy.Long:
		diff = to.Sub(from)
	case strategy.Short:
		diff = from.Sub(to)
	}
	return diff.Div(from)
}

// runEntryPhase asks the strategy for an entry signal when the pair is
// flat, sizes and clamps it through the risk manager, and submits it
// through the executor. Strategy, risk, and executor failures are
// logged and the candle's entry is skipped — they never terminate the
// run.
func (e *Engine) runEntryPhase(ctx context.Context, candles *candle.Candles, i int, c candle.Candle) {
	if _, open := e.positions.GetPosition(e.config.Pair); open {
		return
	}

	sig, ok, err := e.strategy.GenerateEntrySignal(candles, i)
	if err != nil {
		e.logger.Warn("entry signal generation failed, skipping entry phase", map[string]any{"error": err.Error()})
		return
	}
	if !ok || !sig.IsEntry() {
		return
	}

	suggested, err := e.strategy.CalculatePositionSize(sig, e.acct)
	if err != nil {
		e.logger.Warn("position sizing failed, skipping entry", map[string]any{"error": err.Error()})
		return
	}

	clamped := e.risk.ClampSize(suggested, e.positions)
	if !clamped.IsPositive() {
		e.logger.Debug("entry clamped to zero by risk manager, skipping", nil)
		return
	}

	amount, err := clamped.Div(c.Close)
	if err != nil {
		e.logger.Warn("position size to amount conversion failed, skipping entry", map[string]any{"error": err.Error()})
		return
	}

	// Price is attached even for this market order so the risk manager
	// can evaluate requested notional (amount x price) against its
	// money-denominated caps; the executor itself ignores Price for
	// market orders.
	refPrice := c.Close
	req := execution.OrderRequest{
		Pair:      e.config.Pair,
		Side:      sig.Type.SideOf(),
		OrderType: execution.OrderTypeMarket,
		Amount:    amount,
		Price:     &refPrice,
	}
	if err := e.risk.ValidateOrder(req, e.positions); err != nil {
		e.logger.Debug("entry rejected by risk manager", map[string]any{"error": err.Error()})
		return
	}

	order, err := e.executor.Submit(ctx, req)
	if err != nil {
		e.logger.Warn("order submission failed, skipping entry", map[string]any{"error": err.Error()})
		return
	}
	if order.Status != execution.StatusFilled {
		e.logger.Debug("order did not fill immediately, skipping entry", map[string]any{"status": string(order.Status)})
		return
	}

	newPos, err := account.NewPosition(e.config.Pair, req.Side, order.FilledAmount, order.AvgFillPrice, c.Timestamp)
	if err != nil {
		e.logger.Warn("opening filled order as a position failed, skipping entry", map[string]any{"error": err.Error()})
		return
	}
	if err := e.positions.AddPosition(newPos); err != nil {
		e.logger.Warn("adding new position failed, skipping entry", map[string]any{"error": err.Error()})
		return
	}

	e.logger.Info("position opened", map[string]any{
		"pair":  e.config.Pair.String(),
		"side":  string(req.Side),
		"size":  order.FilledAmount.String(),
		"price": order.AvgFillPrice.String(),
	})
}

func (e *Engine) buildResult() *Result {
	return newResult(e.acct, e.positions)
}
