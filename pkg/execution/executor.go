package execution

import (
	"context"
	"fmt"

	"github.com/quantcore/engine/internal/exchange"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategy"
)

// Executor validates OrderRequests and produces Orders. With no bound
// exchange it runs in simulation mode (immediate synthesized fills);
// with one bound, live mode forwards to the exchange contract. Bind an
// *exchange.Resilient rather than a raw venue adapter so a misbehaving
// venue cannot wedge the engine.
type Executor struct {
	exchange exchange.Exchange

	// marketPrice supplies the reference price for simulated market
	// orders; typically wired to the backtest engine's current candle.
	marketPrice func() decimal.Decimal

	orders map[string]Order
}

// NewSimulationExecutor returns an Executor with no bound exchange.
// marketPrice supplies the current price used to fill market orders.
func NewSimulationExecutor(marketPrice func() decimal.Decimal) *Executor {
	return &Executor{
		marketPrice: marketPrice,
		orders:      make(map[string]Order),
	}
}

// NewLiveExecutor returns an Executor bound to ex. Pass an
// *exchange.Resilient shared with the market data provider so both
// consumers of the same venue trip and recover together.
func NewLiveExecutor(ex exchange.Exchange) *Executor {
	return &Executor{
		exchange: ex,
		orders:   make(map[string]Order),
	}
}

// IsLive reports whether the executor forwards to a bound exchange.
func (e *Executor) IsLive() bool {
	return e.exchange != nil
}

// Submit validates req, then either simulates an immediate fill or
// forwards to the bound exchange.
func (e *Executor) Submit(ctx context.Context, req OrderRequest) (Order, error) {
	if err := req.Validate(); err != nil {
		return Order{}, err
	}

	if e.IsLive() {
		return e.submitLive(ctx, req)
	}
	return e.submitSimulated(req)
}

func (e *Executor) submitSimulated(req OrderRequest) (Order, error) {
	fillPrice := e.marketPrice()
	if req.OrderType == OrderTypeLimit {
		fillPrice = *req.Price
	}

	now := decimal.Now()
	order := Order{
		ID:           newOrderID(),
		Pair:         req.Pair,
		Side:         req.Side,
		OrderType:    req.OrderType,
		Amount:       req.Amount,
		Price:        req.Price,
		Status:       StatusFilled,
		FilledAmount: req.Amount,
		AvgFillPrice: fillPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.orders[order.ID] = order
	return order, nil
}

func (e *Executor) submitLive(ctx context.Context, req OrderRequest) (Order, error) {
	exReq := toExchangeRequest(req)

	exOrder, err := e.exchange.CreateOrder(ctx, exReq)
	if err != nil {
		return Order{}, fmt.Errorf("execution: live order submission failed: %w", err)
	}

	order := fromExchangeOrder(exOrder)
	e.orders[order.ID] = order
	return order, nil
}

// Cancel cancels an open or partially-filled order. Terminal orders
// fail with ErrOrderNotCancellable.
func (e *Executor) Cancel(ctx context.Context, orderID string) (Order, error) {
	order, ok := e.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("execution: order %q not found", orderID)
	}
	if order.Status.IsTerminal() {
		return Order{}, ErrOrderNotCancellable
	}

	if e.IsLive() {
		exOrder, err := e.exchange.CancelOrder(ctx, orderID)
		if err != nil {
			return Order{}, fmt.Errorf("execution: live cancel failed: %w", err)
		}
		order = fromExchangeOrder(exOrder)
		e.orders[order.ID] = order
		return order, nil
	}

	order.Status = StatusCancelled
	order.UpdatedAt = decimal.Now()
	e.orders[order.ID] = order
	return order, nil
}

func toExchangeRequest(req OrderRequest) exchange.PlaceOrderRequest {
	exReq := exchange.PlaceOrderRequest{
		Pair:   req.Pair,
		Amount: req.Amount,
	}
	if req.Side == strategy.Long {
		exReq.Side = exchange.OrderSideBuy
	} else {
		exReq.Side = exchange.OrderSideSell
	}
	if req.OrderType == OrderTypeLimit {
		exReq.Type = exchange.OrderTypeLimit
		exReq.Price = *req.Price
	} else {
		exReq.Type = exchange.OrderTypeMarket
	}
	return exReq
}

func fromExchangeOrder(o exchange.Order) Order {
	order := Order{
		ID:           o.ID,
		Pair:         o.Pair,
		OrderType:    OrderType(o.Type),
		Amount:       o.Amount,
		FilledAmount: o.FilledAmount,
		AvgFillPrice: o.AvgFillPrice,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.Side == exchange.OrderSideBuy {
		order.Side = strategy.Long
	} else {
		order.Side = strategy.Short
	}
	if o.Price.IsPositive() {
		p := o.Price
		order.Price = &p
	}
	switch o.Status {
	case exchange.OrderStatusOpen:
		order.Status = StatusOpen
	case exchange.OrderStatusPartiallyFilled:
		order.Status = StatusPartiallyFilled
	case exchange.OrderStatusFilled:
		order.Status = StatusFilled
	case exchange.OrderStatusCancelled:
		order.Status = StatusCancelled
	case exchange.OrderStatusRejected:
		order.Status = StatusRejected
	}
	return order
}
