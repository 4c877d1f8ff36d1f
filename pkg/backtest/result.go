package backtest

import (
	"math"

	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/portfolio"
)

// Result is everything a completed (or aborted) backtest run reports:
// the engine's final state plus the standard summary metrics.
type Result struct {
	FinalBalance    decimal.Decimal
	EquityCurve     []account.EquityPoint
	ClosedPositions []account.Position

	TotalReturn decimal.Decimal // (final_equity - initial) / initial
	WinRate     decimal.Decimal // wins / total_trades
	MaxDrawdown decimal.Decimal // max peak-to-trough fractional loss of the equity curve
	Sharpe      float64         // annualization-free; see computeSharpe
}

func newResult(acct *account.Account, positions *portfolio.Manager) *Result {
	curve := acct.EquityCurve()
	closed := positions.ClosedPositions()

	r := &Result{
		FinalBalance:    acct.Balance(),
		EquityCurve:     curve,
		ClosedPositions: closed,
	}

	r.TotalReturn = computeTotalReturn(curve)
	r.WinRate = computeWinRate(closed)
	r.MaxDrawdown = computeMaxDrawdown(curve)
	r.Sharpe = computeSharpe(curve)
	return r
}

// computeTotalReturn is (final_equity - initial_equity) / initial_equity.
// initial_equity is the equity curve's first sample, since that is the
// only initial-balance reference the Result itself carries.
func computeTotalReturn(curve []account.EquityPoint) decimal.Decimal {
	if len(curve) == 0 {
		return decimal.Zero
	}
	initial := curve[0].Equity
	final := curve[len(curve)-1].Equity
	if initial.IsZero() {
		return decimal.Zero
	}
	ret, err := final.Sub(initial).Div(initial)
	if err != nil {
		return decimal.Zero
	}
	return ret
}

// computeWinRate is wins / total_trades over closed positions.
func computeWinRate(closed []account.Position) decimal.Decimal {
	if len(closed) == 0 {
		return decimal.Zero
	}
	wins := 0
	for _, p := range closed {
		if p.RealizedPnL != nil && p.RealizedPnL.IsPositive() {
			wins++
		}
	}
	rate, err := decimal.FromInt(int64(wins)).Div(decimal.FromInt(int64(len(closed))))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// computeMaxDrawdown is the maximum peak-to-trough fractional loss
// observed across the equity curve.
func computeMaxDrawdown(curve []account.EquityPoint) decimal.Decimal {
	if len(curve) == 0 {
		return decimal.Zero
	}
	peak := curve[0].Equity
	maxDD := decimal.Zero
	for _, p := range curve {
		peak = decimal.Max(peak, p.Equity)
		if peak.IsZero() {
			continue
		}
		dd, err := peak.Sub(p.Equity).Div(peak)
		if err != nil {
			continue
		}
		maxDD = decimal.Max(maxDD, dd)
	}
	return maxDD
}

// computeSharpe is the mean of per-step equity returns divided by their
// population standard deviation, unannualized: the core has no fixed
// notion of trading-day count per candle timeframe, so annualizing here
// would silently bake in an assumption this package does not own.
// Returns 0 if fewer than two samples exist or volatility is zero.
func computeSharpe(curve []account.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev.IsZero() {
			continue
		}
		step, err := curve[i].Equity.Sub(prev).Div(prev)
		if err != nil {
			continue
		}
		returns = append(returns, step.ToFloat())
	}
	if len(returns) == 0 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sumSq float64
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	stdDev := math.Sqrt(sumSq / float64(len(returns)))
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev
}
