package risk

import (
	"fmt"

	"github.com/quantcore/engine/pkg/decimal"
)

// ErrInvalidWinRate is returned when winRate falls outside [0,1].
var ErrInvalidWinRate = fmt.Errorf("risk: win_rate must be in [0,1]")

var (
	quarterKellyDivisor = decimal.FromInt(4)
	kellyFallbackRate   = decimal.MustFromString("0.01")
	kellyCap            = decimal.MustFromString("0.10")
)

// QuarterKellyPositionSize computes a conservative position size from
// win-rate and average win/loss using the Kelly criterion divided by
// four, clamped to [0, 10%] of balance:
//
//	b = avg_win / avg_loss
//	f = (p*b - (1-p)) / b
//	size = balance * clamp(f/4, 0, 0.10)
//
// Missing or non-positive win/loss data falls back to 1% of balance.
// An out-of-range win rate is an error.
func QuarterKellyPositionSize(winRate float64, avgWin, avgLoss, balance decimal.Decimal) (decimal.Decimal, error) {
	if winRate < 0 || winRate > 1 {
		return decimal.Zero, ErrInvalidWinRate
	}

	if !avgWin.IsPositive() || !avgLoss.IsPositive() {
		return balance.Mul(kellyFallbackRate), nil
	}

	b, err := avgWin.Div(avgLoss)
	if err != nil {
		return balance.Mul(kellyFallbackRate), nil
	}

	p := decimal.FromFloat(winRate)
	q := decimal.FromInt(1).Sub(p)

	numerator := p.Mul(b).Sub(q)
	f, err := numerator.Div(b)
	if err != nil {
		return balance.Mul(kellyFallbackRate), nil
	}

	quarterF, err := f.Div(quarterKellyDivisor)
	if err != nil {
		return balance.Mul(kellyFallbackRate), nil
	}

	clamped := decimal.Clamp(quarterF, decimal.Zero, kellyCap)
	return balance.Mul(clamped), nil
}
