// Package csvdata loads an OHLCV candle series from a CSV file for the
// backtest runner. It is the sole file-I/O boundary between the core
// engine and the filesystem.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// expectedHeader is the column order LoadCandles requires.
// timestamp can be a Unix timestamp (seconds, integer) or RFC3339.
var expectedHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// LoadCandles reads an OHLCV CSV file at path into a candle.Candles for
// pair at timeframe. Malformed rows are logged and skipped rather than
// failing the whole load, matching how a single bad tick shouldn't sink
// an otherwise-usable dataset.
func LoadCandles(path string, pair candle.TradingPair, timeframe decimal.Timeframe) (*candle.Candles, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata: open %q: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csvdata: read header: %w", err)
	}
	if len(header) < len(expectedHeader) {
		return nil, fmt.Errorf("csvdata: invalid header: expected %v, got %v", expectedHeader, header)
	}

	series := candle.NewCandles(pair, timeframe)

	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvdata: read record at line %d: %w", lineNum+1, err)
		}
		lineNum++

		if len(record) < len(expectedHeader) {
			log.Warn().Int("line", lineNum).Msg("csvdata: skipping incomplete record")
			continue
		}

		c, err := parseRecord(record)
		if err != nil {
			log.Warn().Int("line", lineNum).Err(err).Msg("csvdata: skipping unparseable record")
			continue
		}

		if err := series.Append(c); err != nil {
			log.Warn().Int("line", lineNum).Err(err).Msg("csvdata: skipping invalid candle")
			continue
		}
	}

	if series.Len() == 0 {
		return nil, fmt.Errorf("csvdata: %q produced no usable candles", path)
	}

	log.Info().Str("file", path).Int("candles", series.Len()).Msg("loaded candle series from csv")
	return series, nil
}

func parseRecord(record []string) (candle.Candle, error) {
	ts, err := parseTimestamp(record[0])
	if err != nil {
		return candle.Candle{}, fmt.Errorf("timestamp: %w", err)
	}

	open, err := decimal.FromString(record[1])
	if err != nil {
		return candle.Candle{}, fmt.Errorf("open: %w", err)
	}
	high, err := decimal.FromString(record[2])
	if err != nil {
		return candle.Candle{}, fmt.Errorf("high: %w", err)
	}
	low, err := decimal.FromString(record[3])
	if err != nil {
		return candle.Candle{}, fmt.Errorf("low: %w", err)
	}
	closePrice, err := decimal.FromString(record[4])
	if err != nil {
		return candle.Candle{}, fmt.Errorf("close: %w", err)
	}
	volume, err := decimal.FromString(record[5])
	if err != nil {
		return candle.Candle{}, fmt.Errorf("volume: %w", err)
	}

	return candle.Candle{
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

func parseTimestamp(s string) (decimal.Timestamp, error) {
	if unixSeconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return decimal.FromTime(time.Unix(unixSeconds, 0).UTC()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return decimal.FromTime(t.UTC()), nil
	}
	return decimal.Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}
