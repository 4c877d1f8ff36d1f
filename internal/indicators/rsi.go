package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/momentum"

	"github.com/quantcore/engine/pkg/decimal"
)

// RSI computes the relative strength index of values over period,
// returning an array the same length as values with leading NaN
// sentinels over the warm-up window.
func RSI(values []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 || period > len(values) {
		return nil, fmt.Errorf("%w: %d (series length %d)", ErrInvalidPeriod, period, len(values))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	result := drainFloatChannel(rsi.Compute(toFloatChannel(values)))
	return padWithNaN(result, len(values)), nil
}
