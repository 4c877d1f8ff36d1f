package account

import (
	"fmt"

	"github.com/quantcore/engine/pkg/decimal"
)

// ErrInsufficientBalance is returned by any mutation that would drive
// the cash balance negative.
var ErrInsufficientBalance = fmt.Errorf("account: insufficient balance")

// EquityPoint is one mark-to-market sample on the equity curve.
type EquityPoint struct {
	Timestamp decimal.Timestamp
	Equity    decimal.Decimal
}

// Account is the engine-owned cash ledger. It is mutated only through
// its own operations, never by direct field access, so the
// balance-never-negative invariant always holds after a validated call.
type Account struct {
	balance     decimal.Decimal
	equityCurve []EquityPoint
}

// NewAccount opens an account with an initial cash balance.
func NewAccount(initialBalance decimal.Decimal) *Account {
	return &Account{balance: initialBalance}
}

// Balance returns the current cash balance.
func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// Deposit credits amount to the balance. amount must be non-negative.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("account: deposit amount must be non-negative, got %s", amount)
	}
	a.balance = a.balance.Add(amount)
	return nil
}

// Withdraw debits amount from the balance. Fails with
// ErrInsufficientBalance rather than drive the balance negative.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("account: withdraw amount must be non-negative, got %s", amount)
	}
	if a.balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// ApplyFee debits a transaction fee from the balance, subject to the
// same non-negative-balance invariant as Withdraw.
func (a *Account) ApplyFee(fee decimal.Decimal) error {
	return a.Withdraw(fee)
}

// Realize settles a closed position's realized PnL into the balance: a
// profit credits, a loss debits. A loss large enough to exceed the
// current balance fails with ErrInsufficientBalance rather than letting
// the balance go negative.
func (a *Account) Realize(pnl decimal.Decimal) error {
	if pnl.IsNegative() {
		return a.Withdraw(pnl.Abs())
	}
	return a.Deposit(pnl)
}

// MarkToMarket appends an equity-curve sample: balance plus the sum of
// unrealized PnL across currently open positions.
func (a *Account) MarkToMarket(at decimal.Timestamp, unrealizedPnL decimal.Decimal) {
	a.equityCurve = append(a.equityCurve, EquityPoint{
		Timestamp: at,
		Equity:    a.balance.Add(unrealizedPnL),
	})
}

// EquityCurve returns the recorded mark-to-market samples in order.
func (a *Account) EquityCurve() []EquityPoint {
	cp := make([]EquityPoint, len(a.equityCurve))
	copy(cp, a.equityCurve)
	return cp
}
