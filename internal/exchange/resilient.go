package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// Circuit-breaker and rate-limit tuning for a live venue connection:
// enough requests to judge a trend, a failure ratio that trips well
// before total outage, and a cooldown before retrying.
const (
	minRequests  = 5
	failureRatio = 0.6
	openTimeout  = 30 * time.Second
	requestRate  = rate.Limit(10) // requests/sec
	requestBurst = 20
)

// Resilient wraps an Exchange with a shared circuit breaker and rate
// limiter, so every caller bound to the same venue — the live executor
// and the market data provider alike — trips and recovers together
// rather than tracking independent failure counts for one flaky venue.
type Resilient struct {
	exchange Exchange
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
}

// NewResilient wraps ex. Bind the result to both the live executor and
// the market data provider to share one breaker and limiter.
func NewResilient(ex Exchange) *Resilient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "exchange",
		MaxRequests: minRequests,
		Interval:    0,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= failureRatio
		},
	})

	return &Resilient{
		exchange: ex,
		breaker:  breaker,
		limiter:  rate.NewLimiter(requestRate, requestBurst),
	}
}

func (r *Resilient) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return nil
}

// GetTicker implements Exchange.
func (r *Resilient) GetTicker(ctx context.Context, pair candle.TradingPair) (Ticker, error) {
	if err := r.wait(ctx); err != nil {
		return Ticker{}, err
	}
	result, err := r.breaker.Execute(func() (any, error) {
		return r.exchange.GetTicker(ctx, pair)
	})
	if err != nil {
		return Ticker{}, err
	}
	return result.(Ticker), nil
}

// GetCandles implements Exchange.
func (r *Resilient) GetCandles(ctx context.Context, pair candle.TradingPair, tf decimal.Timeframe, start, end decimal.Timestamp) ([]candle.Candle, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	result, err := r.breaker.Execute(func() (any, error) {
		return r.exchange.GetCandles(ctx, pair, tf, start, end)
	})
	if err != nil {
		return nil, err
	}
	return result.([]candle.Candle), nil
}

// CreateOrder implements Exchange.
func (r *Resilient) CreateOrder(ctx context.Context, req PlaceOrderRequest) (Order, error) {
	if err := r.wait(ctx); err != nil {
		return Order{}, err
	}
	result, err := r.breaker.Execute(func() (any, error) {
		return r.exchange.CreateOrder(ctx, req)
	})
	if err != nil {
		return Order{}, err
	}
	return result.(Order), nil
}

// CancelOrder implements Exchange.
func (r *Resilient) CancelOrder(ctx context.Context, orderID string) (Order, error) {
	if err := r.wait(ctx); err != nil {
		return Order{}, err
	}
	result, err := r.breaker.Execute(func() (any, error) {
		return r.exchange.CancelOrder(ctx, orderID)
	})
	if err != nil {
		return Order{}, err
	}
	return result.(Order), nil
}
