package exchange

import (
	"context"
	"fmt"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// Errors an Exchange implementation may return; the core treats these
// as the full set of integration failures from a live venue.
var (
	ErrNoExchangeConnected = fmt.Errorf("exchange: no exchange connected")
	ErrRateLimited         = fmt.Errorf("exchange: rate limited")
	ErrOrderRejected       = fmt.Errorf("exchange: order rejected")
	ErrTimeout             = fmt.Errorf("exchange: timeout")
)

// Exchange is the IExchange contract: the only way the core's live
// path touches a real venue. Both MockExchange (paper trading) and any
// real venue adapter implement this.
type Exchange interface {
	// GetTicker returns the latest quote for pair.
	GetTicker(ctx context.Context, pair candle.TradingPair) (Ticker, error)

	// GetCandles returns the candle window [start, end] for pair at tf.
	GetCandles(ctx context.Context, pair candle.TradingPair, tf decimal.Timeframe, start, end decimal.Timestamp) ([]candle.Candle, error)

	// CreateOrder submits req and returns the exchange's view of it.
	CreateOrder(ctx context.Context, req PlaceOrderRequest) (Order, error)

	// CancelOrder cancels an existing order by exchange id.
	CancelOrder(ctx context.Context, orderID string) (Order, error)
}
