// Command backtest replays a strategy against a historical CSV candle
// series and reports the resulting performance summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/quantcore/engine/internal/config"
	"github.com/quantcore/engine/internal/csvdata"
	"github.com/quantcore/engine/pkg/backtest"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategies/dualma"
	"github.com/quantcore/engine/pkg/strategy"
)

var (
	configPath = flag.String("config", "", "Path to config file (optional; defaults searched in ./configs, .)")
	csvPath    = flag.String("csv-path", "", "Override data.csv_path")
	symbol     = flag.String("symbol", "", "Override trading.symbol (e.g. BTCUSDT)")
	strategyID = flag.String("strategy", "", "Override trading.strategy")
	capital    = flag.Float64("capital", 0, "Override trading.initial_capital")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg)

	logLevel := cfg.App.LogLevel
	if *verbose {
		logLevel = "debug"
	}
	config.InitLogger(logLevel, cfg.App.LogFormat)

	ctx := context.Background()
	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}
}

func applyOverrides(cfg *config.Config) {
	if *csvPath != "" {
		cfg.Data.CSVPath = *csvPath
	}
	if *symbol != "" {
		cfg.Trading.Symbol = *symbol
	}
	if *strategyID != "" {
		cfg.Trading.Strategy = *strategyID
	}
	if *capital > 0 {
		cfg.Trading.InitialCapital = *capital
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pair, err := parsePair(cfg.Trading.Symbol)
	if err != nil {
		return fmt.Errorf("symbol: %w", err)
	}

	timeframe := decimal.Timeframe(cfg.Data.Timeframe)

	candles, err := csvdata.LoadCandles(cfg.Data.CSVPath, pair, timeframe)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	strat, err := createStrategy(cfg.Trading.Strategy, pair)
	if err != nil {
		return fmt.Errorf("create strategy: %w", err)
	}

	strategyCfg, err := buildStrategyConfig(cfg, pair, timeframe, strat)
	if err != nil {
		return fmt.Errorf("build strategy config: %w", err)
	}

	initialBalance := decimal.FromFloat(cfg.Trading.InitialCapital)
	logger := config.NewStrategyLogger(config.NewLogger("engine"))
	engine := backtest.NewEngine(strat, strategyCfg, initialBalance, logger)

	log.Info().
		Str("strategy", cfg.Trading.Strategy).
		Str("pair", pair.String()).
		Str("timeframe", cfg.Data.Timeframe).
		Float64("capital", cfg.Trading.InitialCapital).
		Int("candles", candles.Len()).
		Msg("starting backtest")

	result, err := engine.Run(ctx, candles)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	printResult(result)
	return nil
}

// buildStrategyConfig assembles a strategy.StrategyConfig from cfg and
// strat's own metadata and parameters, applying the config's risk
// overrides on top of the strategy's defaults.
func buildStrategyConfig(cfg *config.Config, pair candle.TradingPair, timeframe decimal.Timeframe, strat strategy.IStrategy) (strategy.StrategyConfig, error) {
	metadata := strat.GetMetadata()
	metadata.Stoploss = decimal.FromFloat(-cfg.Risk.DefaultStopLoss)

	var trailing *strategy.TrailingStopConfig
	if cfg.Risk.TrailingActivate > 0 {
		trailing = &strategy.TrailingStopConfig{
			ActivatePercent: decimal.FromFloat(cfg.Risk.TrailingActivate),
			OffsetPercent:   decimal.FromFloat(cfg.Risk.TrailingOffset),
		}
		metadata.TrailingStop = trailing
	}

	strategyCfg := strategy.StrategyConfig{
		Pair:          pair,
		Timeframe:     timeframe,
		MaxOpenTrades: cfg.Trading.MaxOpenTrades,
		StakeAmount:   decimal.FromFloat(cfg.Trading.StakeAmount),
		TrailingStop:  trailing,
		Parameters:    strat.GetParameters(),
		Metadata:      metadata,
	}

	if err := strategyCfg.Validate(); err != nil {
		return strategy.StrategyConfig{}, err
	}
	return strategyCfg, nil
}

func printResult(r *backtest.Result) {
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Final Balance:   %s\n", r.FinalBalance)
	fmt.Printf("Total Return:    %s\n", r.TotalReturn)
	fmt.Printf("Win Rate:        %s\n", r.WinRate)
	fmt.Printf("Max Drawdown:    %s\n", r.MaxDrawdown)
	fmt.Printf("Sharpe:          %.4f\n", r.Sharpe)
	fmt.Printf("Closed Trades:   %d\n", len(r.ClosedPositions))
}

// createStrategy instantiates a registered strategy by name. dual-ma is
// the only strategy shipped in this core; the switch exists so adding a
// second strategy never touches callers.
func createStrategy(name string, pair candle.TradingPair) (strategy.IStrategy, error) {
	switch strings.ToLower(name) {
	case "dual-ma", "":
		return dualma.New(pair, dualma.DefaultConfig()), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (available: dual-ma)", name)
	}
}

// parsePair splits a symbol like "BTCUSDT" or "BTC/USDT" into its base
// and quote legs. Symbols without a separator are matched against a
// fixed list of known quote-asset suffixes, the convention this corpus
// (and most spot exchanges) uses for compact symbol strings.
func parsePair(symbol string) (candle.TradingPair, error) {
	if base, quote, ok := strings.Cut(symbol, "/"); ok {
		return candle.TradingPair{Base: base, Quote: quote}, nil
	}

	for _, quote := range []string{"USDT", "USDC", "BUSD", "USD", "BTC", "ETH"} {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return candle.TradingPair{
				Base:  strings.TrimSuffix(symbol, quote),
				Quote: quote,
			}, nil
		}
	}

	return candle.TradingPair{}, fmt.Errorf("cannot determine base/quote split for symbol %q", symbol)
}
