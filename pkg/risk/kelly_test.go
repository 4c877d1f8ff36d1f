package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcore/engine/pkg/decimal"
)

// TestQuarterKellySeedScenario: win_rate=0.6, avg_win=100, avg_loss=50,
// balance=10000 => Kelly=(0.6*2-0.4)/2=0.4, quarter-Kelly=0.10 (cap),
// result=1000.
func TestQuarterKellySeedScenario(t *testing.T) {
	size, err := QuarterKellyPositionSize(0.6, decimal.FromInt(100), decimal.FromInt(50), decimal.FromInt(10000))
	require.NoError(t, err)
	assert.True(t, size.Eql(decimal.FromInt(1000)))
}

func TestQuarterKellyUncappedResultIsQuarterOfKellyFraction(t *testing.T) {
	// b=1 (avg_win==avg_loss), p=0.55 => f=(0.55-0.45)/1=0.10, quarter=0.025.
	size, err := QuarterKellyPositionSize(0.55, decimal.FromInt(100), decimal.FromInt(100), decimal.FromInt(10000))
	require.NoError(t, err)
	assert.True(t, size.Eql(decimal.MustFromString("250")))
}

func TestQuarterKellyFallsBackOnMissingWinLossData(t *testing.T) {
	size, err := QuarterKellyPositionSize(0.6, decimal.Zero, decimal.FromInt(50), decimal.FromInt(10000))
	require.NoError(t, err)
	assert.True(t, size.Eql(decimal.FromInt(100)))
}

func TestQuarterKellyRejectsOutOfRangeWinRate(t *testing.T) {
	_, err := QuarterKellyPositionSize(1.5, decimal.FromInt(100), decimal.FromInt(50), decimal.FromInt(10000))
	assert.ErrorIs(t, err, ErrInvalidWinRate)

	_, err = QuarterKellyPositionSize(-0.1, decimal.FromInt(100), decimal.FromInt(50), decimal.FromInt(10000))
	assert.ErrorIs(t, err, ErrInvalidWinRate)
}

func TestQuarterKellyNegativeEdgeClampsToZero(t *testing.T) {
	// p=0.2, b=1 => f=(0.2-0.8)/1=-0.6, quarter=-0.15, clamped to 0.
	size, err := QuarterKellyPositionSize(0.2, decimal.FromInt(100), decimal.FromInt(100), decimal.FromInt(10000))
	require.NoError(t, err)
	assert.True(t, size.Eql(decimal.Zero))
}
