package strategy

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/quantcore/engine/pkg/decimal"
)

var (
	ErrInvalidParameter     = fmt.Errorf("strategy: invalid parameter")
	ErrROINotNonDecreasing  = fmt.Errorf("strategy: minimal_roi time_minutes not strictly non-decreasing")
	ErrTrailingOffsetTooBig = fmt.Errorf("strategy: trailing stop offset must be <= activate")
)

// ROIStep is one rung of a MinimalROI ladder: from time_minutes onward,
// the position is closed once unrealized return reaches profit_ratio.
type ROIStep struct {
	TimeMinutes int
	ProfitRatio decimal.Decimal
}

// MinimalROI is a piecewise-constant profit-taking schedule keyed by
// elapsed minutes since entry, strictly non-decreasing in TimeMinutes.
type MinimalROI struct {
	steps []ROIStep
}

// NewMinimalROI builds a MinimalROI from steps, validating that
// TimeMinutes is strictly non-decreasing once sorted.
func NewMinimalROI(steps []ROIStep) (MinimalROI, error) {
	cp := make([]ROIStep, len(steps))
	copy(cp, steps)
	sort.Slice(cp, func(i, j int) bool { return cp[i].TimeMinutes < cp[j].TimeMinutes })

	for i := 1; i < len(cp); i++ {
		if cp[i].TimeMinutes < cp[i-1].TimeMinutes {
			return MinimalROI{}, ErrROINotNonDecreasing
		}
	}
	for _, s := range cp {
		if s.ProfitRatio.IsNegative() {
			return MinimalROI{}, fmt.Errorf("%w: negative profit_ratio at t=%d", ErrInvalidParameter, s.TimeMinutes)
		}
	}
	return MinimalROI{steps: cp}, nil
}

// Threshold returns the ROI step applicable at elapsedMinutes: the
// highest threshold whose TimeMinutes <= elapsed. Ties resolve to the
// latest (largest TimeMinutes) applicable entry. ok is false if no step
// applies yet (elapsed before the first threshold).
func (m MinimalROI) Threshold(elapsedMinutes int) (ROIStep, bool) {
	var best ROIStep
	found := false
	for _, s := range m.steps {
		if s.TimeMinutes <= elapsedMinutes {
			best = s
			found = true
		}
	}
	return best, found
}

// Steps returns a defensive copy of the ladder's rungs.
func (m MinimalROI) Steps() []ROIStep {
	cp := make([]ROIStep, len(m.steps))
	copy(cp, m.steps)
	return cp
}

// TrailingStopConfig configures a dynamic stop that follows the favorable
// extreme of price since entry.
type TrailingStopConfig struct {
	ActivatePercent decimal.Decimal // profit fraction at which trailing engages
	OffsetPercent   decimal.Decimal // retrace fraction from peak that triggers exit
}

// Validate enforces offset <= activate.
func (t TrailingStopConfig) Validate() error {
	if t.OffsetPercent.GreaterThan(t.ActivatePercent) {
		return ErrTrailingOffsetTooBig
	}
	return nil
}

// StrategyMetadata is the static, read-only description a strategy
// exposes for reporting and optimization.
type StrategyMetadata struct {
	Name               string
	Version            string
	Author             string
	Description        string
	StrategyType       string
	Timeframe          decimal.Timeframe
	StartupCandleCount int
	MinimalROI         MinimalROI
	Stoploss           decimal.Decimal // must be < 0
	TrailingStop       *TrailingStopConfig
}

// Validate checks the invariants spec'd for metadata: non-empty
// name/version (a valid semver), negative stoploss, and (if present) a
// valid trailing-stop configuration.
func (m StrategyMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: empty strategy name", ErrInvalidParameter)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: empty strategy version", ErrInvalidParameter)
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("%w: version %q is not valid semver: %v", ErrInvalidParameter, m.Version, err)
	}
	if !m.Stoploss.IsNegative() {
		return fmt.Errorf("%w: stoploss must be negative, got %s", ErrInvalidParameter, m.Stoploss)
	}
	if m.StartupCandleCount < 0 {
		return fmt.Errorf("%w: negative startup_candle_count", ErrInvalidParameter)
	}
	if m.TrailingStop != nil {
		if err := m.TrailingStop.Validate(); err != nil {
			return err
		}
	}
	return nil
}
