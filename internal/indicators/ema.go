package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/trend"

	"github.com/quantcore/engine/pkg/decimal"
)

// EMA computes the exponential moving average of values over period,
// returning an array the same length as values with leading NaN
// sentinels over the warm-up window cinar/indicator's EMA needs before
// it produces its first value.
func EMA(values []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 || period > len(values) {
		return nil, fmt.Errorf("%w: %d (series length %d)", ErrInvalidPeriod, period, len(values))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	result := drainFloatChannel(ema.Compute(toFloatChannel(values)))
	return padWithNaN(result, len(values)), nil
}
