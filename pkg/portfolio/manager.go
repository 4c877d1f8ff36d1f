// Package portfolio tracks the engine's live collection of open and
// closed positions, independent of the cash Account they settle into.
package portfolio

import (
	"fmt"
	"sync"

	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// ErrCannotAddClosedPosition is returned when AddPosition is called
// with a position that is not open.
var ErrCannotAddClosedPosition = fmt.Errorf("portfolio: cannot add a closed position")

// ErrNoOpenPosition is returned when ClosePosition finds no open
// position for the requested pair.
var ErrNoOpenPosition = fmt.Errorf("portfolio: no open position for pair")

// Manager holds the engine's open and closed positions. A pair may have
// at most one open position at a time in practice, but ClosePosition
// closes the oldest match so the type makes no such assumption.
//
// Satisfies risk.PositionSource.
type Manager struct {
	mu     sync.RWMutex
	open   []account.Position
	closed []account.Position
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// AddPosition appends open to the open set. Fails with
// ErrCannotAddClosedPosition if open is not in StatusOpen.
func (m *Manager) AddPosition(open account.Position) error {
	if !open.IsOpen() {
		return ErrCannotAddClosedPosition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = append(m.open, open)
	return nil
}

// ClosePosition closes the oldest open position matching pair at
// exitPrice and closedAt, moves it to the closed set, and returns it by
// value. Fails with ErrNoOpenPosition if no open position matches.
func (m *Manager) ClosePosition(pair candle.TradingPair, exitPrice decimal.Decimal, closedAt decimal.Timestamp) (account.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.open {
		if !p.Pair.Equal(pair) {
			continue
		}
		closedPos, err := p.Close(exitPrice, closedAt)
		if err != nil {
			return account.Position{}, err
		}
		m.open = append(m.open[:i], m.open[i+1:]...)
		m.closed = append(m.closed, closedPos)
		return closedPos, nil
	}
	return account.Position{}, fmt.Errorf("%w: %s", ErrNoOpenPosition, pair)
}

// GetPosition returns the oldest open position for pair, if any.
func (m *Manager) GetPosition(pair candle.TradingPair) (account.Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.open {
		if p.Pair.Equal(pair) {
			return p, true
		}
	}
	return account.Position{}, false
}

// OpenPositions returns a defensive copy of all currently open
// positions.
func (m *Manager) OpenPositions() []account.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]account.Position, len(m.open))
	copy(out, m.open)
	return out
}

// ClosedPositions returns a defensive copy of all closed positions, in
// the order they were closed.
func (m *Manager) ClosedPositions() []account.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]account.Position, len(m.closed))
	copy(out, m.closed)
	return out
}

// OpenPositionCount reports how many positions are currently open.
func (m *Manager) OpenPositionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.open)
}

// TotalExposure sums size x entry_price across all open positions.
func (m *Manager) TotalExposure() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, p := range m.open {
		total = total.Add(p.Size.Mul(p.EntryPrice))
	}
	return total
}

// TotalUnrealizedPnL sums UnrealizedPnL across all open positions,
// using currentPrices keyed by pair string for each position's mark.
// A position whose pair has no entry in currentPrices contributes zero.
func (m *Manager) TotalUnrealizedPnL(currentPrices map[string]decimal.Decimal) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, p := range m.open {
		price, ok := currentPrices[p.Pair.String()]
		if !ok {
			continue
		}
		total = total.Add(p.UnrealizedPnL(price))
	}
	return total
}
