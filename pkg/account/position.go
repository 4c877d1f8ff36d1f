// Package account holds the strategy-visible Position lifecycle and the
// engine-owned cash Account it settles into.
package account

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategy"
)

// Status is a Position's lifecycle state.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

var (
	ErrPositionAlreadyClosed = fmt.Errorf("account: position already closed")
	ErrInvalidEntryPrice     = fmt.Errorf("account: entry price must be positive")
	ErrInvalidExitPrice      = fmt.Errorf("account: exit price must be positive")
	ErrInvalidPositionSize   = fmt.Errorf("account: size must be positive")
)

// Position is the strategy's view of a single open or closed trade.
// Transitions from open to closed exactly once, via Close.
type Position struct {
	ID          string
	Pair        candle.TradingPair
	Side        strategy.Side
	Size        decimal.Decimal
	EntryPrice  decimal.Decimal
	ExitPrice   *decimal.Decimal
	Status      Status
	RealizedPnL *decimal.Decimal
	OpenedAt    decimal.Timestamp
	ClosedAt    *decimal.Timestamp
}

// NewPosition opens a new position. Size and entry price must be
// positive.
func NewPosition(pair candle.TradingPair, side strategy.Side, size, entryPrice decimal.Decimal, openedAt decimal.Timestamp) (Position, error) {
	if !size.IsPositive() {
		return Position{}, ErrInvalidPositionSize
	}
	if !entryPrice.IsPositive() {
		return Position{}, ErrInvalidEntryPrice
	}
	return Position{
		ID:         uuid.NewString(),
		Pair:       pair,
		Side:       side,
		Size:       size,
		EntryPrice: entryPrice,
		Status:     StatusOpen,
		OpenedAt:   openedAt,
	}, nil
}

// Close transitions an open position to closed, computing realized PnL:
// (exit - entry) x size for a long, (entry - exit) x size for a short.
// Fails with ErrPositionAlreadyClosed if already closed.
func (p Position) Close(exitPrice decimal.Decimal, closedAt decimal.Timestamp) (Position, error) {
	if p.Status == StatusClosed {
		return Position{}, ErrPositionAlreadyClosed
	}
	if !exitPrice.IsPositive() {
		return Position{}, ErrInvalidExitPrice
	}

	var pnl decimal.Decimal
	switch p.Side {
	case strategy.Long:
		pnl = exitPrice.Sub(p.EntryPrice).Mul(p.Size)
	case strategy.Short:
		pnl = p.EntryPrice.Sub(exitPrice).Mul(p.Size)
	}

	p.Status = StatusClosed
	p.ExitPrice = &exitPrice
	p.RealizedPnL = &pnl
	p.ClosedAt = &closedAt
	return p, nil
}

// UnrealizedPnL computes the mark-to-market PnL of an open position at
// currentPrice, using the same sign convention as Close.
func (p Position) UnrealizedPnL(currentPrice decimal.Decimal) decimal.Decimal {
	switch p.Side {
	case strategy.Long:
		return currentPrice.Sub(p.EntryPrice).Mul(p.Size)
	case strategy.Short:
		return p.EntryPrice.Sub(currentPrice).Mul(p.Size)
	default:
		return decimal.Zero
	}
}

// UnrealizedReturn computes unrealized PnL as a fraction of the
// position's entry notional (entry_price x size); used for ROI/stoploss
// evaluation.
func (p Position) UnrealizedReturn(currentPrice decimal.Decimal) (decimal.Decimal, error) {
	notional := p.EntryPrice.Mul(p.Size)
	return p.UnrealizedPnL(currentPrice).Div(notional)
}

// ElapsedMinutes returns the whole minutes elapsed between OpenedAt and
// at, floored.
func (p Position) ElapsedMinutes(at decimal.Timestamp) int {
	return int(at.Sub(p.OpenedAt).Minutes())
}

// IsOpen reports whether the position is still open.
func (p Position) IsOpen() bool {
	return p.Status == StatusOpen
}
