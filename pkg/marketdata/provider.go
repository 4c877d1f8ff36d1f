// Package marketdata provides the latest-price and candle-window
// contract the strategy runtime and live executor read from, backed by
// an in-memory cache with an optional Redis L2 and a bound exchange as
// the fetch-on-miss fallback.
package marketdata

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/quantcore/engine/internal/exchange"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// ErrNoExchangeConnected is returned when a cache miss occurs and no
// exchange is bound to fetch fresh data.
var ErrNoExchangeConnected = fmt.Errorf("marketdata: no exchange connected")

type candleWindowKey struct {
	pair      string
	timeframe decimal.Timeframe
	start     int64
	end       int64
}

// Provider is the market-data contract: latest price and candle-window
// lookups, with a direct-write path for backtest feeds that supply
// data themselves rather than fetching it from a venue.
type Provider struct {
	mu sync.RWMutex

	prices  map[string]decimal.Decimal
	candles map[candleWindowKey][]candle.Candle

	exchange exchange.Exchange // optional; nil means no live fallback
	l2       L2Cache           // optional; nil means in-memory only

	group singleflight.Group
}

// L2Cache is the optional second-level cache (e.g. Redis) a Provider
// may consult before falling back to the bound exchange.
type L2Cache interface {
	GetPrice(ctx context.Context, pair candle.TradingPair) (decimal.Decimal, bool)
	SetPrice(ctx context.Context, pair candle.TradingPair, price decimal.Decimal)
}

// NewProvider returns an in-memory-only Provider. Bind an exchange with
// BindExchange and an L2 cache with BindL2Cache as needed.
func NewProvider() *Provider {
	return &Provider{
		prices:  make(map[string]decimal.Decimal),
		candles: make(map[candleWindowKey][]candle.Candle),
	}
}

// BindExchange attaches a live exchange as the fetch-on-miss fallback.
func (p *Provider) BindExchange(ex exchange.Exchange) {
	p.exchange = ex
}

// BindL2Cache attaches an optional second-level cache consulted before
// the bound exchange on a miss.
func (p *Provider) BindL2Cache(l2 L2Cache) {
	p.l2 = l2
}

// UpdatePrice is the direct-write path backtest feeds use to push the
// current candle's close as the latest price, bypassing any exchange.
func (p *Provider) UpdatePrice(pair candle.TradingPair, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[pair.String()] = price
}

// SetCandles is the direct-write path for pre-loaded backtest candle
// windows.
func (p *Provider) SetCandles(pair candle.TradingPair, tf decimal.Timeframe, start, end decimal.Timestamp, candles []candle.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candles[candleWindowKey{pair.String(), tf, start.UnixMilli(), end.UnixMilli()}] = candles
}

// LatestPrice returns the most recent price for pair: the in-memory
// cache, then the optional L2 cache, then the bound exchange's ticker.
// Fails with ErrNoExchangeConnected if none of those have the price.
func (p *Provider) LatestPrice(ctx context.Context, pair candle.TradingPair) (decimal.Decimal, error) {
	p.mu.RLock()
	price, ok := p.prices[pair.String()]
	p.mu.RUnlock()
	if ok {
		return price, nil
	}

	if p.l2 != nil {
		if price, ok := p.l2.GetPrice(ctx, pair); ok {
			p.UpdatePrice(pair, price)
			return price, nil
		}
	}

	if p.exchange == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no price cached for %s", ErrNoExchangeConnected, pair)
	}

	v, err, _ := p.group.Do("price:"+pair.String(), func() (any, error) {
		ticker, err := p.exchange.GetTicker(ctx, pair)
		if err != nil {
			return decimal.Decimal{}, err
		}
		p.UpdatePrice(pair, ticker.Price)
		if p.l2 != nil {
			p.l2.SetPrice(ctx, pair, ticker.Price)
		}
		return ticker.Price, nil
	})
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("marketdata: fetch ticker for %s: %w", pair, err)
	}
	return v.(decimal.Decimal), nil
}

// Candles returns the candle window [start, end] for pair at tf: the
// in-memory cache, then the bound exchange. Concurrent identical
// fetches are deduplicated via singleflight.
func (p *Provider) Candles(ctx context.Context, pair candle.TradingPair, tf decimal.Timeframe, start, end decimal.Timestamp) ([]candle.Candle, error) {
	key := candleWindowKey{pair.String(), tf, start.UnixMilli(), end.UnixMilli()}

	p.mu.RLock()
	cached, ok := p.candles[key]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if p.exchange == nil {
		return nil, fmt.Errorf("%w: no candles cached for %s %s", ErrNoExchangeConnected, pair, tf)
	}

	sfKey := fmt.Sprintf("candles:%s:%s:%d:%d", pair, tf, key.start, key.end)
	v, err, _ := p.group.Do(sfKey, func() (any, error) {
		candles, err := p.exchange.GetCandles(ctx, pair, tf, start, end)
		if err != nil {
			return nil, err
		}
		p.SetCandles(pair, tf, start, end, candles)
		return candles, nil
	})
	if err != nil {
		return nil, fmt.Errorf("marketdata: fetch candles for %s %s: %w", pair, tf, err)
	}
	return v.([]candle.Candle), nil
}
