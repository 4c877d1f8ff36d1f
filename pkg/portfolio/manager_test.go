package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantcore/engine/pkg/account"
	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
	"github.com/quantcore/engine/pkg/strategy"
)

var (
	btcUSDT = candle.TradingPair{Base: "BTC", Quote: "USDT"}
	ethUSDT = candle.TradingPair{Base: "ETH", Quote: "USDT"}
)

func openPos(t *testing.T, pair candle.TradingPair, side strategy.Side, size, entry decimal.Decimal) account.Position {
	t.Helper()
	p, err := account.NewPosition(pair, side, size, entry, decimal.Now())
	require.NoError(t, err)
	return p
}

func TestAddPositionRejectsClosed(t *testing.T) {
	m := NewManager()
	p := openPos(t, btcUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(100))
	closedPos, err := p.Close(decimal.FromInt(110), decimal.Now())
	require.NoError(t, err)

	err = m.AddPosition(closedPos)
	assert.ErrorIs(t, err, ErrCannotAddClosedPosition)
}

func TestAddPositionAndOpenPositionCount(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddPosition(openPos(t, btcUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(100))))
	require.NoError(t, m.AddPosition(openPos(t, ethUSDT, strategy.Short, decimal.FromInt(2), decimal.FromInt(50))))

	assert.Equal(t, 2, m.OpenPositionCount())
}

func TestClosePositionClosesOldestMatchingPair(t *testing.T) {
	m := NewManager()
	first := openPos(t, btcUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(100))
	second := openPos(t, btcUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(105))
	require.NoError(t, m.AddPosition(first))
	require.NoError(t, m.AddPosition(second))

	closedPos, err := m.ClosePosition(btcUSDT, decimal.FromInt(120), decimal.Now())
	require.NoError(t, err)
	assert.Equal(t, first.ID, closedPos.ID)
	assert.Equal(t, 1, m.OpenPositionCount())
	assert.Len(t, m.ClosedPositions(), 1)
}

func TestClosePositionNoMatchFails(t *testing.T) {
	m := NewManager()
	_, err := m.ClosePosition(btcUSDT, decimal.FromInt(100), decimal.Now())
	assert.ErrorIs(t, err, ErrNoOpenPosition)
}

func TestGetPositionFindsOpenByPair(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddPosition(openPos(t, btcUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(100))))

	got, ok := m.GetPosition(btcUSDT)
	assert.True(t, ok)
	assert.True(t, got.Pair.Equal(btcUSDT))

	_, ok = m.GetPosition(ethUSDT)
	assert.False(t, ok)
}

func TestTotalExposureSumsSizeTimesEntryPrice(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddPosition(openPos(t, btcUSDT, strategy.Long, decimal.FromInt(2), decimal.FromInt(100))))
	require.NoError(t, m.AddPosition(openPos(t, ethUSDT, strategy.Short, decimal.FromInt(3), decimal.FromInt(50))))

	assert.True(t, m.TotalExposure().Eql(decimal.FromInt(350)))
}

func TestTotalUnrealizedPnLSkipsPairsWithoutPrice(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddPosition(openPos(t, btcUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(100))))
	require.NoError(t, m.AddPosition(openPos(t, ethUSDT, strategy.Long, decimal.FromInt(1), decimal.FromInt(50))))

	total := m.TotalUnrealizedPnL(map[string]decimal.Decimal{
		btcUSDT.String(): decimal.FromInt(110),
	})
	assert.True(t, total.Eql(decimal.FromInt(10)))
}
