package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// getValidConfig returns a valid configuration for testing
func getValidConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:      "quantcore-backtest",
			Version:   "0.1.0",
			LogLevel:  "info",
			LogFormat: "console",
		},
		Data: DataConfig{
			CSVPath:   "testdata/btcusdt_1h.csv",
			Timeframe: "1h",
		},
		Trading: TradingConfig{
			Strategy:       "dual-ma",
			Symbol:         "BTCUSDT",
			InitialCapital: 10000.0,
			MaxOpenTrades:  3,
			StakeAmount:    1000.0,
		},
		Risk: RiskConfig{
			DefaultStopLoss:  0.05,
			TrailingActivate: 0.02,
			TrailingOffset:   0.01,
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := getValidConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsMissingCSVPath(t *testing.T) {
	cfg := getValidConfig()
	cfg.Data.CSVPath = ""
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "data.csv_path")
}

func TestValidateRejectsUnknownTimeframe(t *testing.T) {
	cfg := getValidConfig()
	cfg.Data.Timeframe = "3h"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "data.timeframe")
}

func TestValidateRejectsNonPositiveStakeAmount(t *testing.T) {
	cfg := getValidConfig()
	cfg.Trading.StakeAmount = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trading.stake_amount")
}

func TestValidateRejectsZeroMaxOpenTrades(t *testing.T) {
	cfg := getValidConfig()
	cfg.Trading.MaxOpenTrades = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trading.max_open_trades")
}

func TestValidateRejectsOutOfRangeStopLoss(t *testing.T) {
	cfg := getValidConfig()
	cfg.Risk.DefaultStopLoss = 1.5
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "risk.default_stop_loss")
}

func TestValidateRejectsTrailingOffsetAboveActivate(t *testing.T) {
	cfg := getValidConfig()
	cfg.Risk.TrailingActivate = 0.01
	cfg.Risk.TrailingOffset = 0.02
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "risk.trailing_offset")
}

func TestValidationErrorsFormatsMultipleErrors(t *testing.T) {
	cfg := getValidConfig()
	cfg.Trading.Symbol = ""
	cfg.Trading.StakeAmount = -1

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trading.symbol")
	assert.Contains(t, err.Error(), "trading.stake_amount")
}
