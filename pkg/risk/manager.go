// Package risk enforces the pre-trade validation envelope every order
// request passes through before it reaches the executor, plus the
// quarter-Kelly sizing heuristic strategies may use as a starting point.
package risk

import (
	"fmt"

	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/execution"
)

var (
	ErrMaxOpenTradesReached  = fmt.Errorf("risk: max open trades reached")
	ErrPositionSizeTooLarge  = fmt.Errorf("risk: position size exceeds stake amount")
	ErrTotalExposureTooLarge = fmt.Errorf("risk: total exposure exceeds cap")
)

// PositionSource is the read-only view of open positions the risk
// manager needs to evaluate an order request; pkg/portfolio.Manager
// satisfies it.
type PositionSource interface {
	OpenPositionCount() int
	TotalExposure() decimal.Decimal
}

// Manager enforces per-order and aggregate exposure limits.
type Manager struct {
	MaxOpenTrades   int
	StakeAmount     decimal.Decimal // per-position cap
	MaxTotalExposure decimal.Decimal
}

// NewManager builds a Manager with the derived max-total-exposure cap:
// stake_amount x max_open_trades.
func NewManager(maxOpenTrades int, stakeAmount decimal.Decimal) Manager {
	return Manager{
		MaxOpenTrades:    maxOpenTrades,
		StakeAmount:      stakeAmount,
		MaxTotalExposure: stakeAmount.Mul(decimal.FromInt(int64(maxOpenTrades))),
	}
}

// ValidateOrder checks req against, in order, the open-trade count, the
// per-position size cap, and the aggregate exposure cap. The earliest
// failing rule is reported.
func (m Manager) ValidateOrder(req execution.OrderRequest, positions PositionSource) error {
	if positions.OpenPositionCount() >= m.MaxOpenTrades {
		return ErrMaxOpenTradesReached
	}

	requestedSize := req.Amount
	if req.Price != nil {
		requestedSize = req.Amount.Mul(*req.Price)
	}
	if requestedSize.GreaterThan(m.StakeAmount) {
		return ErrPositionSizeTooLarge
	}

	if positions.TotalExposure().Add(requestedSize).GreaterThan(m.MaxTotalExposure) {
		return ErrTotalExposureTooLarge
	}

	return nil
}

// CurrentRiskRatio reports how much of the aggregate exposure cap is
// currently used, in [0,1].
func (m Manager) CurrentRiskRatio(positions PositionSource) (decimal.Decimal, error) {
	if m.MaxTotalExposure.IsZero() {
		return decimal.Zero, fmt.Errorf("risk: max_total_exposure is zero")
	}
	return positions.TotalExposure().Div(m.MaxTotalExposure)
}

// ClampSize reduces a strategy-suggested size to whatever the risk
// envelope still allows for a new position, given the current open
// positions. It returns the zero Decimal (not an error) when no room
// remains — callers are expected to skip the entry in that case.
func (m Manager) ClampSize(suggested decimal.Decimal, positions PositionSource) decimal.Decimal {
	if positions.OpenPositionCount() >= m.MaxOpenTrades {
		return decimal.Zero
	}

	capped := decimal.Min(suggested, m.StakeAmount)

	remaining := m.MaxTotalExposure.Sub(positions.TotalExposure())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	capped = decimal.Min(capped, remaining)

	if capped.IsNegative() {
		return decimal.Zero
	}
	return capped
}
