package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// MockExchange simulates a trading venue for paper trading and tests.
// It holds all state in memory; nothing is persisted (the core has no
// persistence layer).
type MockExchange struct {
	mu sync.RWMutex

	orders map[string]Order

	// marketPrices is keyed by TradingPair.String() rather than
	// TradingPair itself for a plain string-keyed map.
	marketPrices map[string]decimal.Decimal

	baseSlippage decimal.Decimal // fraction of price, applied against the requester
}

// NewMockExchange creates a mock exchange with a conservative default
// slippage.
func NewMockExchange() *MockExchange {
	return NewMockExchangeWithSlippage(decimal.MustFromString("0.0005"))
}

// NewMockExchangeWithSlippage creates a mock exchange with a configured
// slippage fraction, applied unfavorably to the requester on every
// market fill.
func NewMockExchangeWithSlippage(baseSlippage decimal.Decimal) *MockExchange {
	return &MockExchange{
		orders:       make(map[string]Order),
		marketPrices: make(map[string]decimal.Decimal),
		baseSlippage: baseSlippage,
	}
}

// SetMarketPrice sets the current reference price for pair, used to
// synthesize market-order fills.
func (m *MockExchange) SetMarketPrice(pair candle.TradingPair, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marketPrices[pair.String()] = price
}

// GetTicker returns the last price set via SetMarketPrice for pair.
func (m *MockExchange) GetTicker(ctx context.Context, pair candle.TradingPair) (Ticker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	price, ok := m.marketPrices[pair.String()]
	if !ok {
		return Ticker{}, fmt.Errorf("%w: no price set for %s", ErrNoExchangeConnected, pair)
	}
	return Ticker{Pair: pair, Price: price, Timestamp: decimal.Now()}, nil
}

// GetCandles is unimplemented on the mock: paper trading feeds candles
// directly into pkg/marketdata rather than fetching them from a venue.
func (m *MockExchange) GetCandles(ctx context.Context, pair candle.TradingPair, tf decimal.Timeframe, start, end decimal.Timestamp) ([]candle.Candle, error) {
	return nil, fmt.Errorf("%w: mock exchange does not serve historical candles", ErrNoExchangeConnected)
}

// CreateOrder validates req and synthesizes an immediate, total fill: a
// market order fills at the current market price moved against the
// requester by the slippage fraction (up for a buy, down for a sell); a
// limit order fills at its limit price. The mock never partially fills:
// spec's fill model assumes total immediate fills.
func (m *MockExchange) CreateOrder(ctx context.Context, req PlaceOrderRequest) (Order, error) {
	if err := m.validateOrder(req); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrOrderRejected, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := decimal.Now()
	order := Order{
		ID:        uuid.NewString(),
		Pair:      req.Pair,
		Side:      req.Side,
		Type:      req.Type,
		Amount:    req.Amount,
		Price:     req.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	fillPrice, err := m.fillPrice(req)
	if err != nil {
		order.Status = OrderStatusRejected
		order.RejectReason = err.Error()
		m.orders[order.ID] = order
		return order, fmt.Errorf("%w: %v", ErrOrderRejected, err)
	}

	order.FilledAmount = req.Amount
	order.AvgFillPrice = fillPrice
	order.Status = OrderStatusFilled
	m.orders[order.ID] = order

	log.Debug().
		Str("order_id", order.ID).
		Str("pair", req.Pair.String()).
		Str("side", string(req.Side)).
		Str("fill_price", fillPrice.String()).
		Msg("mock order filled")

	return order, nil
}

// CancelOrder cancels an order still in an open state. MockExchange
// fills every order immediately in CreateOrder, so this only matters
// for adapters that leave orders open; it exists to satisfy the
// Exchange contract faithfully.
func (m *MockExchange) CancelOrder(ctx context.Context, orderID string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("exchange: order %q not found", orderID)
	}
	if order.Status != OrderStatusOpen && order.Status != OrderStatusPartiallyFilled {
		return Order{}, fmt.Errorf("exchange: order %q not cancellable in status %q", orderID, order.Status)
	}

	order.Status = OrderStatusCancelled
	order.UpdatedAt = decimal.Now()
	m.orders[order.ID] = order
	return order, nil
}

func (m *MockExchange) fillPrice(req PlaceOrderRequest) (decimal.Decimal, error) {
	switch req.Type {
	case OrderTypeLimit:
		return req.Price, nil
	case OrderTypeMarket:
		mid, ok := m.marketPrices[req.Pair.String()]
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("no market price set for %s", req.Pair)
		}
		slip := mid.Mul(m.baseSlippage)
		if req.Side == OrderSideBuy {
			return mid.Add(slip), nil
		}
		return mid.Sub(slip), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unknown order type %q", req.Type)
	}
}

func (m *MockExchange) validateOrder(req PlaceOrderRequest) error {
	if req.Side != OrderSideBuy && req.Side != OrderSideSell {
		return fmt.Errorf("invalid order side: %s", req.Side)
	}
	if req.Type != OrderTypeMarket && req.Type != OrderTypeLimit {
		return fmt.Errorf("invalid order type: %s", req.Type)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if req.Type == OrderTypeLimit && !req.Price.IsPositive() {
		return fmt.Errorf("limit orders must have a positive price")
	}
	return nil
}
