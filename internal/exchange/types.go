package exchange

import (
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// OrderSide is buy or sell, from the exchange's point of view.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType is market or limit.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderStatus is the exchange-reported lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// PlaceOrderRequest is the exchange-facing order submission shape.
type PlaceOrderRequest struct {
	Pair   candle.TradingPair
	Side   OrderSide
	Type   OrderType
	Amount decimal.Decimal
	Price  decimal.Decimal // required for limit orders
}

// Order is the exchange's view of a submitted order.
type Order struct {
	ID           string
	Pair         candle.TradingPair
	Side         OrderSide
	Type         OrderType
	Amount       decimal.Decimal
	Price        decimal.Decimal
	FilledAmount decimal.Decimal
	AvgFillPrice decimal.Decimal
	Status       OrderStatus
	CreatedAt    decimal.Timestamp
	UpdatedAt    decimal.Timestamp
	RejectReason string
}

// Ticker is a point-in-time quote for a pair.
type Ticker struct {
	Pair      candle.TradingPair
	Price     decimal.Decimal
	Timestamp decimal.Timestamp
}
