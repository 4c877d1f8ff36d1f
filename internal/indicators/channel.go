// Package indicators adapts the cinar/indicator/v2 technical-analysis
// library to the engine's Decimal-denominated candle series: every
// exported function returns an array the same length as its input,
// with leading warm-up positions padded with decimal.NaN() rather than
// truncated, so it lines up index-for-index against the candle series
// it was computed from.
package indicators

import (
	"github.com/quantcore/engine/pkg/decimal"
)

// toFloatChannel feeds values onto a buffered channel as float64, the
// only representation cinar/indicator's generic pipelines accept. This
// is the package's one sanctioned Decimal->float64 boundary; results
// are converted back to Decimal by the caller before being handed to a
// strategy or attached to a candle series.
func toFloatChannel(values []decimal.Decimal) chan float64 {
	ch := make(chan float64, len(values))
	for _, v := range values {
		ch <- v.ToFloat()
	}
	close(ch)
	return ch
}

func drainFloatChannel(ch chan float64) []float64 {
	out := make([]float64, 0)
	for v := range ch {
		out = append(out, v)
	}
	return out
}

// padWithNaN prepends warm-up NaN sentinels so result has the same
// length as inputLen, matching the candle series it was derived from.
func padWithNaN(result []float64, inputLen int) []decimal.Decimal {
	out := make([]decimal.Decimal, inputLen)
	warmup := inputLen - len(result)
	for i := 0; i < warmup; i++ {
		out[i] = decimal.NaN()
	}
	for i, v := range result {
		out[warmup+i] = decimal.FromFloat(v)
	}
	return out
}
