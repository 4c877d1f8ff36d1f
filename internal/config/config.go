package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all backtest-runner configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Data    DataConfig    `mapstructure:"data"`
	Trading TradingConfig `mapstructure:"trading"`
	Risk    RiskConfig    `mapstructure:"risk"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // "json" or "console"
}

// DataConfig points the runner at the candle series to replay.
type DataConfig struct {
	CSVPath   string `mapstructure:"csv_path"`
	Timeframe string `mapstructure:"timeframe"` // "1m","5m","15m","1h","4h","1d"
}

// TradingConfig contains the single-pair backtest parameters.
type TradingConfig struct {
	Strategy       string  `mapstructure:"strategy"` // registered strategy name
	Symbol         string  `mapstructure:"symbol"`   // "BTCUSDT"
	InitialCapital float64 `mapstructure:"initial_capital"`
	MaxOpenTrades  int     `mapstructure:"max_open_trades"`
	StakeAmount    float64 `mapstructure:"stake_amount"`
}

// RiskConfig contains default risk-management parameters a strategy's
// metadata may be overridden with at startup.
type RiskConfig struct {
	DefaultStopLoss    float64 `mapstructure:"default_stop_loss"`    // e.g. 0.02 (2%), stored positive, negated before use
	TrailingActivate   float64 `mapstructure:"trailing_activate"`    // 0 disables trailing stop
	TrailingOffset     float64 `mapstructure:"trailing_offset"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("QUANTCORE")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "quantcore-backtest")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")

	v.SetDefault("data.timeframe", "1h")

	v.SetDefault("trading.strategy", "dual-ma")
	v.SetDefault("trading.symbol", "BTCUSDT")
	v.SetDefault("trading.initial_capital", 10000.0)
	v.SetDefault("trading.max_open_trades", 3)
	v.SetDefault("trading.stake_amount", 1000.0)

	v.SetDefault("risk.default_stop_loss", 0.05)
	v.SetDefault("risk.trailing_activate", 0.0)
	v.SetDefault("risk.trailing_offset", 0.0)
}
