// Package execution validates order requests and turns them into orders,
// either by simulating a fill directly or by forwarding to a bound
// exchange contract.
package execution

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategy"
)

// OrderType is market or limit.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderStatus is the lifecycle state of a core-issued Order.
// submitted -> open -> (partially_filled)* -> {filled, cancelled, rejected}.
// Once terminal (filled, cancelled, rejected) an Order is immutable.
type OrderStatus string

const (
	StatusSubmitted       OrderStatus = "submitted"
	StatusOpen            OrderStatus = "open"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRejected        OrderStatus = "rejected"
)

// IsTerminal reports whether s is a state an Order can no longer leave.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected
}

var (
	ErrInvalidOrderAmount     = fmt.Errorf("execution: order amount must be positive")
	ErrLimitOrderRequiresPrice = fmt.Errorf("execution: limit order requires a positive price")
	ErrOrderNotCancellable    = fmt.Errorf("execution: order not cancellable in its current status")
)

// OrderRequest is a caller's request to submit an order.
type OrderRequest struct {
	Pair      candle.TradingPair
	Side      strategy.Side
	OrderType OrderType
	Amount    decimal.Decimal
	Price     *decimal.Decimal // required iff OrderType == OrderTypeLimit
}

// Validate enforces amount > 0 and, for limit orders, a positive price.
// These are the only rules the executor enforces; risk checks are a
// separate concern (pkg/risk).
func (r OrderRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ErrInvalidOrderAmount
	}
	if r.OrderType == OrderTypeLimit {
		if r.Price == nil || !r.Price.IsPositive() {
			return ErrLimitOrderRequiresPrice
		}
	}
	return nil
}

// Order is the executor's record of a submitted order.
type Order struct {
	ID            string
	Pair          candle.TradingPair
	Side          strategy.Side
	OrderType     OrderType
	Amount        decimal.Decimal
	Price         *decimal.Decimal
	Status        OrderStatus
	FilledAmount  decimal.Decimal
	AvgFillPrice  decimal.Decimal
	CreatedAt     decimal.Timestamp
	UpdatedAt     decimal.Timestamp
}

// newOrderID generates a fresh order identifier.
func newOrderID() string {
	return uuid.NewString()
}
