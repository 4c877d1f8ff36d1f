package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

func validConfig() StrategyConfig {
	roi, _ := NewMinimalROI(mkROISteps())
	return StrategyConfig{
		Pair:          candle.TradingPair{Base: "BTC", Quote: "USDT"},
		Timeframe:     decimal.Timeframe1h,
		MaxOpenTrades: 3,
		StakeAmount:   decimal.FromInt(1000),
		Parameters:    []Parameter{{Name: "fast_period", Value: decimal.FromInt(2)}},
		Metadata: StrategyMetadata{
			Name:               "dual-ma-crossover",
			Version:            "1.0.0",
			StartupCandleCount: 4,
			MinimalROI:         roi,
			Stoploss:           decimal.MustFromString("-0.05"),
		},
	}
}

func TestStrategyConfigValidateHappyPath(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestStrategyConfigValidateRejectsNonPositiveMaxOpenTrades(t *testing.T) {
	c := validConfig()
	c.MaxOpenTrades = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidParameter)
}

func TestStrategyConfigValidateRejectsNonPositiveStake(t *testing.T) {
	c := validConfig()
	c.StakeAmount = decimal.Zero
	assert.ErrorIs(t, c.Validate(), ErrInvalidParameter)
}

func TestStrategyConfigMaxTotalExposure(t *testing.T) {
	c := validConfig()
	assert.True(t, c.MaxTotalExposure().Eql(decimal.FromInt(3000)))
}

func TestStrategyConfigCopyIsIndependent(t *testing.T) {
	c := validConfig()
	cp := c.Copy()
	cp.Parameters[0].Value = decimal.FromInt(99)

	require.Len(t, c.Parameters, 1)
	assert.True(t, c.Parameters[0].Value.Eql(decimal.FromInt(2)))
}
