package dualma

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategy"
)

var testPair = candle.TradingPair{Base: "BTC", Quote: "USDT"}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]any)        {}
func (noopLogger) Info(string, map[string]any)         {}
func (noopLogger) Warn(string, map[string]any)         {}
func (noopLogger) Error(string, error, map[string]any) {}

func TestInitSetsLoggerAndDoesNotError(t *testing.T) {
	s := New(testPair, DefaultConfig())
	require.NoError(t, s.Init(context.Background(), noopLogger{}))
	require.NoError(t, s.Deinit())
}

func TestGetMetadataReportsStartupCandleCountFromSlowPeriod(t *testing.T) {
	s := New(testPair, Config{FastPeriod: 9, SlowPeriod: 21, StakeFraction: decimal.MustFromString("0.1")})
	md := s.GetMetadata()
	assert.Equal(t, 21, md.StartupCandleCount)
	assert.True(t, md.Stoploss.IsNegative())
}

func TestGetParametersReflectsConfig(t *testing.T) {
	s := New(testPair, Config{FastPeriod: 5, SlowPeriod: 10, StakeFraction: decimal.MustFromString("0.2")})
	params := s.GetParameters()
	require.Len(t, params, 3)
	assert.Equal(t, "fast_period", params[0].Name)
	assert.True(t, params[0].Value.Eql(decimal.FromInt(5)))
}

func TestCalculatePositionSizeReturnsNotionalStakeFractionOfBalance(t *testing.T) {
	s := New(testPair, Config{FastPeriod: 5, SlowPeriod: 10, StakeFraction: decimal.MustFromString("0.1")})
	acct := account.NewAccount(decimal.FromInt(10000))

	// Price must not factor into the result: this is a notional-dollar
	// amount, not a base-asset quantity, regardless of signal price.
	sig := strategy.Signal{Price: decimal.FromInt(50000)}
	size, err := s.CalculatePositionSize(sig, acct)
	require.NoError(t, err)
	assert.True(t, size.Eql(decimal.FromInt(1000)))
}

func TestCalculatePositionSizeRejectsNonPositivePrice(t *testing.T) {
	s := New(testPair, DefaultConfig())
	acct := account.NewAccount(decimal.FromInt(10000))

	_, err := s.CalculatePositionSize(strategy.Signal{Price: decimal.Zero}, acct)
	assert.Error(t, err)
}

func TestGenerateEntrySignalNoSignalBeforeWarmup(t *testing.T) {
	s := New(testPair, Config{FastPeriod: 2, SlowPeriod: 3, StakeFraction: decimal.MustFromString("0.1")})
	closes := []int64{10, 11, 12, 13, 14}
	cs := buildHourlySeries(t, closes)
	require.NoError(t, s.PopulateIndicators(cs))

	_, ok, err := s.GenerateEntrySignal(cs, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateEntrySignalFiresOnGoldenCross(t *testing.T) {
	s := New(testPair, Config{FastPeriod: 2, SlowPeriod: 4, StakeFraction: decimal.MustFromString("0.1")})
	closes := []int64{100, 100, 100, 100, 100, 120, 140, 160, 180, 200}
	cs := buildHourlySeries(t, closes)
	require.NoError(t, s.PopulateIndicators(cs))

	fired := false
	for i := 0; i < cs.Len(); i++ {
		sig, ok, err := s.GenerateEntrySignal(cs, i)
		require.NoError(t, err)
		if ok {
			fired = true
			assert.Equal(t, strategy.EntryLong, sig.Type)
			break
		}
	}
	assert.True(t, fired, "expected a golden cross entry signal somewhere in the uptrend")
}

func TestGenerateExitSignalFiresOnDeathCross(t *testing.T) {
	s := New(testPair, Config{FastPeriod: 2, SlowPeriod: 4, StakeFraction: decimal.MustFromString("0.1")})
	closes := []int64{200, 200, 200, 200, 200, 180, 160, 140, 120, 100}
	cs := buildHourlySeries(t, closes)
	require.NoError(t, s.PopulateIndicators(cs))

	pos, err := account.NewPosition(testPair, strategy.Long, decimal.FromInt(1), decimal.FromInt(200), mustTimestamp(t))
	require.NoError(t, err)

	fired := false
	for i := 0; i < cs.Len(); i++ {
		sig, ok, err := s.GenerateExitSignal(cs, i, pos)
		require.NoError(t, err)
		if ok {
			fired = true
			assert.Equal(t, strategy.ExitLong, sig.Type)
			break
		}
	}
	assert.True(t, fired, "expected a death cross exit signal somewhere in the downtrend")
}

func buildHourlySeries(t *testing.T, closes []int64) *candle.Candles {
	t.Helper()
	cs := candle.NewCandles(testPair, decimal.Timeframe1h)
	base := mustTimestamp(t)
	for i, v := range closes {
		price := decimal.FromInt(v)
		ts := addHours(base, i)
		require.NoError(t, cs.Append(candle.Candle{
			Timestamp: ts,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    decimal.FromInt(1),
		}))
	}
	return cs
}

func mustTimestamp(t *testing.T) decimal.Timestamp {
	t.Helper()
	ts, err := decimal.FromISO8601("2024-01-01T00:00:00Z")
	require.NoError(t, err)
	return ts
}

func addHours(ts decimal.Timestamp, n int) decimal.Timestamp {
	d, _ := decimal.Timeframe1h.Duration()
	for i := 0; i < n; i++ {
		ts = ts.Add(d)
	}
	return ts
}
