package strategy

import (
	"context"

	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// Logger is the structured logging contract a strategy receives at
// Init. It never fails; implementations swallow their own transport
// errors.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
}

// IStrategy is the polymorphic contract the backtest and live runtimes
// drive. Implementations must not observe candle data at an index
// strictly greater than the index they were asked to decide on. The
// engine enforces this by only ever handing GenerateEntrySignal and
// GenerateExitSignal a view carved with candle.Candles.Bounded(i): every
// accessor on that view reports index > i as out of range, so there is
// nothing to reach around.
type IStrategy interface {
	// Init is called once before the first candle. It may allocate any
	// long-lived state the strategy needs for the run.
	Init(ctx context.Context, logger Logger) error

	// Deinit releases everything allocated in Init or
	// PopulateIndicators. Called once at the end of a run.
	Deinit() error

	// PopulateIndicators attaches every indicator array the strategy
	// will read later onto candles. Called exactly once per backtest
	// run over the full series; a live adapter may call it
	// incrementally but must preserve the same semantic result.
	PopulateIndicators(candles *candle.Candles) error

	// GenerateEntrySignal evaluates candle i and returns a signal if
	// the strategy wants to enter a position. ok is false (no signal)
	// until the strategy has enough warm-up history, i.e. before
	// StartupCandleCount candles have elapsed.
	GenerateEntrySignal(candles *candle.Candles, i int) (sig Signal, ok bool, err error)

	// GenerateExitSignal evaluates the open position against candle i
	// and returns a signal if the strategy wants to close it.
	GenerateExitSignal(candles *candle.Candles, i int, position account.Position) (sig Signal, ok bool, err error)

	// CalculatePositionSize returns the strategy's suggested size for
	// signal, before the risk manager's clamping is applied.
	CalculatePositionSize(signal Signal, acct *account.Account) (decimal.Decimal, error)

	// GetParameters returns a static, read-only view of the strategy's
	// tunable parameters, for optimization and reporting.
	GetParameters() []Parameter

	// GetMetadata returns a static, read-only view of the strategy's
	// identity and configuration.
	GetMetadata() StrategyMetadata
}
