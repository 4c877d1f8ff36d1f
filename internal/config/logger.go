package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string
	Format     string // "json" or "console"
	TimeFormat string
	Output     io.Writer
}

// InitLogger initializes the global logger
func InitLogger(level, format string) {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Set time format
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Configure output format
	var output io.Writer = os.Stdout
	if format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	// Set global logger
	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()

	log.Info().
		Str("level", logLevel.String()).
		Str("format", format).
		Msg("Logger initialized")
}

// NewLogger creates a new logger with a component name
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// StrategyLogger adapts a zerolog.Logger to strategy.Logger so a
// strategy's structured log calls flow through the same sink and
// formatting as the rest of the engine.
type StrategyLogger struct {
	log zerolog.Logger
}

// NewStrategyLogger wraps a component-scoped zerolog.Logger.
func NewStrategyLogger(logger zerolog.Logger) StrategyLogger {
	return StrategyLogger{log: logger}
}

func withFields(event *zerolog.Event, fields map[string]any) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

// Debug implements strategy.Logger.
func (l StrategyLogger) Debug(msg string, fields map[string]any) {
	withFields(l.log.Debug(), fields).Msg(msg)
}

// Info implements strategy.Logger.
func (l StrategyLogger) Info(msg string, fields map[string]any) {
	withFields(l.log.Info(), fields).Msg(msg)
}

// Warn implements strategy.Logger.
func (l StrategyLogger) Warn(msg string, fields map[string]any) {
	withFields(l.log.Warn(), fields).Msg(msg)
}

// Error implements strategy.Logger.
func (l StrategyLogger) Error(msg string, err error, fields map[string]any) {
	withFields(l.log.Error().Err(err), fields).Msg(msg)
}
