package indicators

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// Manager is a strategy-owned indicator service: it computes named
// indicator arrays against a candle series and attaches them to the
// series via SetIndicator, so PopulateIndicators pays the computation
// cost once per run and every subsequent read goes through
// Candles.IndicatorAt. A Manager is never shared across strategies.
type Manager struct{}

// NewManager creates an indicator manager.
func NewManager() *Manager {
	log.Debug().Msg("indicator manager initialized")
	return &Manager{}
}

func closes(series *candle.Candles) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, series.Len())
	for i := 0; i < series.Len(); i++ {
		c, err := series.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = c.Close
	}
	return out, nil
}

// PopulateSMA computes SMA(period) over series' closes and attaches it
// under name.
func (m *Manager) PopulateSMA(series *candle.Candles, name string, period int) error {
	return m.populate(series, name, period, SMA)
}

// PopulateEMA computes EMA(period) over series' closes and attaches it
// under name.
func (m *Manager) PopulateEMA(series *candle.Candles, name string, period int) error {
	return m.populate(series, name, period, EMA)
}

// PopulateRSI computes RSI(period) over series' closes and attaches it
// under name.
func (m *Manager) PopulateRSI(series *candle.Candles, name string, period int) error {
	return m.populate(series, name, period, RSI)
}

func (m *Manager) populate(series *candle.Candles, name string, period int, fn func([]decimal.Decimal, int) ([]decimal.Decimal, error)) error {
	prices, err := closes(series)
	if err != nil {
		return fmt.Errorf("indicators: populate %q: %w", name, err)
	}

	values, err := fn(prices, period)
	if err != nil {
		return fmt.Errorf("indicators: populate %q: %w", name, err)
	}
	return series.SetIndicator(name, values)
}
