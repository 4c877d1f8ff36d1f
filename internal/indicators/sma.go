package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/trend"

	"github.com/quantcore/engine/pkg/decimal"
)

// ErrInvalidPeriod is returned when period is non-positive or exceeds
// the length of the input series.
var ErrInvalidPeriod = fmt.Errorf("indicators: invalid period")

// SMA computes the simple moving average of values over period,
// returning an array the same length as values with period-1 leading
// NaN sentinels.
func SMA(values []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 || period > len(values) {
		return nil, fmt.Errorf("%w: %d (series length %d)", ErrInvalidPeriod, period, len(values))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	result := drainFloatChannel(sma.Compute(toFloatChannel(values)))
	return padWithNaN(result, len(values)), nil
}
