package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalIsEntryIsExit(t *testing.T) {
	assert.True(t, Signal{Type: EntryLong}.IsEntry())
	assert.True(t, Signal{Type: EntryShort}.IsEntry())
	assert.False(t, Signal{Type: ExitLong}.IsEntry())

	assert.True(t, Signal{Type: ExitLong}.IsExit())
	assert.True(t, Signal{Type: ExitShort}.IsExit())
	assert.False(t, Signal{Type: Hold}.IsExit())
}

func TestSideOf(t *testing.T) {
	assert.Equal(t, Long, EntryLong.SideOf())
	assert.Equal(t, Long, ExitLong.SideOf())
	assert.Equal(t, Short, EntryShort.SideOf())
	assert.Equal(t, Short, ExitShort.SideOf())
	assert.Equal(t, Side(""), Hold.SideOf())
}

func TestNewHold(t *testing.T) {
	s := NewHold()
	assert.Equal(t, Hold, s.Type)
	assert.False(t, s.IsEntry())
	assert.False(t, s.IsExit())
}
