package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	sb.WriteString("\nPlease fix the above errors and try again.\n")
	return sb.String()
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateApp()...)
	errors = append(errors, c.validateData()...)
	errors = append(errors, c.validateTrading()...)
	errors = append(errors, c.validateRisk()...)

	if len(errors) > 0 {
		return errors
	}

	return nil
}

func (c *Config) validateApp() ValidationErrors {
	var errors ValidationErrors

	if c.App.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "app.name",
			Message: "Application name is required",
		})
	}

	if c.App.LogLevel == "" {
		errors = append(errors, ValidationError{
			Field:   "app.log_level",
			Message: "Log level is required (debug, info, warn, error)",
		})
	}

	validFormats := []string{"json", "console"}
	valid := false
	for _, f := range validFormats {
		if c.App.LogFormat == f {
			valid = true
			break
		}
	}
	if !valid {
		errors = append(errors, ValidationError{
			Field:   "app.log_format",
			Message: fmt.Sprintf("Invalid log_format %q. Must be one of: %v", c.App.LogFormat, validFormats),
		})
	}

	return errors
}

func (c *Config) validateData() ValidationErrors {
	var errors ValidationErrors

	if c.Data.CSVPath == "" {
		errors = append(errors, ValidationError{
			Field:   "data.csv_path",
			Message: "CSV candle data path is required",
		})
	}

	validTimeframes := []string{"1m", "5m", "15m", "1h", "4h", "1d"}
	valid := false
	for _, tf := range validTimeframes {
		if c.Data.Timeframe == tf {
			valid = true
			break
		}
	}
	if !valid {
		errors = append(errors, ValidationError{
			Field:   "data.timeframe",
			Message: fmt.Sprintf("Invalid timeframe %q. Must be one of: %v", c.Data.Timeframe, validTimeframes),
		})
	}

	return errors
}

func (c *Config) validateTrading() ValidationErrors {
	var errors ValidationErrors

	if c.Trading.Strategy == "" {
		errors = append(errors, ValidationError{
			Field:   "trading.strategy",
			Message: "Strategy name is required",
		})
	}

	if c.Trading.Symbol == "" {
		errors = append(errors, ValidationError{
			Field:   "trading.symbol",
			Message: "Trading symbol is required",
		})
	}

	if c.Trading.InitialCapital <= 0 {
		errors = append(errors, ValidationError{
			Field:   "trading.initial_capital",
			Message: "Initial capital must be greater than 0",
		})
	}

	if c.Trading.MaxOpenTrades < 1 {
		errors = append(errors, ValidationError{
			Field:   "trading.max_open_trades",
			Message: "max_open_trades must be at least 1",
		})
	}

	if c.Trading.StakeAmount <= 0 {
		errors = append(errors, ValidationError{
			Field:   "trading.stake_amount",
			Message: "stake_amount must be greater than 0",
		})
	}

	return errors
}

func (c *Config) validateRisk() ValidationErrors {
	var errors ValidationErrors

	if c.Risk.DefaultStopLoss <= 0 || c.Risk.DefaultStopLoss > 1 {
		errors = append(errors, ValidationError{
			Field:   "risk.default_stop_loss",
			Message: fmt.Sprintf("Invalid default_stop_loss %.4f. Must be between 0-1 (representing a fraction)", c.Risk.DefaultStopLoss),
		})
	}

	if c.Risk.TrailingActivate < 0 {
		errors = append(errors, ValidationError{
			Field:   "risk.trailing_activate",
			Message: "trailing_activate must be non-negative",
		})
	}

	if c.Risk.TrailingOffset < 0 {
		errors = append(errors, ValidationError{
			Field:   "risk.trailing_offset",
			Message: "trailing_offset must be non-negative",
		})
	}

	if c.Risk.TrailingActivate > 0 && c.Risk.TrailingOffset > c.Risk.TrailingActivate {
		errors = append(errors, ValidationError{
			Field:   "risk.trailing_offset",
			Message: "trailing_offset must not exceed trailing_activate",
		})
	}

	return errors
}

// ValidateAndLoad loads and validates configuration. configPath can be
// empty to use default config locations.
func ValidateAndLoad(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
