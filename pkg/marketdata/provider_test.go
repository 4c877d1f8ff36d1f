package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcore/engine/internal/exchange"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

var testPair = candle.TradingPair{Base: "BTC", Quote: "USDT"}

func TestLatestPriceDirectWrite(t *testing.T) {
	p := NewProvider()
	p.UpdatePrice(testPair, decimal.FromInt(100))

	price, err := p.LatestPrice(context.Background(), testPair)
	require.NoError(t, err)
	assert.True(t, price.Eql(decimal.FromInt(100)))
}

func TestLatestPriceNoExchangeConnectedOnMiss(t *testing.T) {
	p := NewProvider()
	_, err := p.LatestPrice(context.Background(), testPair)
	assert.ErrorIs(t, err, ErrNoExchangeConnected)
}

func TestLatestPriceFallsBackToExchange(t *testing.T) {
	mock := exchange.NewMockExchange()
	mock.SetMarketPrice(testPair, decimal.FromInt(200))

	p := NewProvider()
	p.BindExchange(mock)

	price, err := p.LatestPrice(context.Background(), testPair)
	require.NoError(t, err)
	assert.True(t, price.Eql(decimal.FromInt(200)))

	// Second call should hit the now-populated in-memory cache, not the exchange again.
	price2, err := p.LatestPrice(context.Background(), testPair)
	require.NoError(t, err)
	assert.True(t, price2.Eql(price))
}

func TestCandlesDirectWrite(t *testing.T) {
	p := NewProvider()
	start := decimal.Now()
	end := start.Add(0)
	c := candle.Candle{
		Timestamp: start,
		Open:      decimal.FromInt(1), High: decimal.FromInt(2), Low: decimal.FromInt(1), Close: decimal.FromInt(1), Volume: decimal.FromInt(1),
	}
	p.SetCandles(testPair, decimal.Timeframe1h, start, end, []candle.Candle{c})

	got, err := p.Candles(context.Background(), testPair, decimal.Timeframe1h, start, end)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCandlesNoExchangeConnectedOnMiss(t *testing.T) {
	p := NewProvider()
	start := decimal.Now()
	_, err := p.Candles(context.Background(), testPair, decimal.Timeframe1h, start, start)
	assert.ErrorIs(t, err, ErrNoExchangeConnected)
}
