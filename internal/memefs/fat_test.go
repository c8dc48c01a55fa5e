package memefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func reservedIntact(t *testing.T, tab *Table) {
	t.Helper()
	for i := uint16(0); i < NumBlocks; i++ {
		if !userBlock(i) {
			require.Equal(t, EndOfChain, tab.Entry(i), "reserved slot %d", i)
		}
	}
}

func TestNewTable(t *testing.T) {
	tab := NewTable()

	reservedIntact(t, tab)
	require.Equal(t, NumUserBlocks, tab.FreeBlocks())
	require.True(t, tab.Mirrored())
}

func TestAllocChain(t *testing.T) {
	tab := NewTable()

	first, err := tab.AllocChain(3)
	require.NoError(t, err)
	require.Equal(t, uint16(FirstUserBlock), first)

	// Ascending selection, linked in order, terminated by the sentinel.
	require.Equal(t, uint16(20), tab.Entry(19))
	require.Equal(t, uint16(21), tab.Entry(20))
	require.Equal(t, EndOfChain, tab.Entry(21))

	require.Equal(t, NumUserBlocks-3, tab.FreeBlocks())
	require.True(t, tab.Mirrored())
	reservedIntact(t, tab)
}

func TestAllocChainNoSpace(t *testing.T) {
	tab := NewTable()

	_, err := tab.AllocChain(NumUserBlocks + 1)
	require.ErrorIs(t, err, ErrNoSpace)

	// A failed allocation must not touch any slot.
	require.Equal(t, NumUserBlocks, tab.FreeBlocks())
	require.True(t, tab.Mirrored())
}

func TestExtendChain(t *testing.T) {
	tab := NewTable()

	first, err := tab.AllocChain(1)
	require.NoError(t, err)

	require.NoError(t, tab.ExtendChain(first, 2))
	require.Equal(t, []uint16{19, 20, 21}, tab.chainBlocks(first))
	require.True(t, tab.Mirrored())
}

func TestExtendChainSkipsUsedBlocks(t *testing.T) {
	tab := NewTable()

	a, err := tab.AllocChain(2) // blocks 19, 20
	require.NoError(t, err)
	b, err := tab.AllocChain(1) // block 21
	require.NoError(t, err)

	require.NoError(t, tab.ExtendChain(20, 1)) // a ends at 20; picks 22
	require.Equal(t, []uint16{19, 20, 22}, tab.chainBlocks(a))
	require.Equal(t, []uint16{21}, tab.chainBlocks(b))
}

func TestFreeChain(t *testing.T) {
	tab := NewTable()

	first, err := tab.AllocChain(4)
	require.NoError(t, err)

	tab.FreeChain(first)
	require.Equal(t, NumUserBlocks, tab.FreeBlocks())
	require.True(t, tab.Mirrored())
	reservedIntact(t, tab)
}

func TestFreeChainNoop(t *testing.T) {
	tab := NewTable()
	tab.FreeChain(EndOfChain)
	require.Equal(t, NumUserBlocks, tab.FreeBlocks())
}

func TestChainIterationStops(t *testing.T) {
	tab := NewTable()

	first, err := tab.AllocChain(5)
	require.NoError(t, err)

	var visited []uint16
	for b := range tab.Chain(first) {
		visited = append(visited, b)
		if len(visited) == 2 {
			break
		}
	}
	require.Equal(t, []uint16{19, 20}, visited)
}

func TestAllocReusesFreedBlocks(t *testing.T) {
	tab := NewTable()

	a, err := tab.AllocChain(2) // 19, 20
	require.NoError(t, err)
	_, err = tab.AllocChain(1) // 21
	require.NoError(t, err)

	tab.FreeChain(a)

	b, err := tab.AllocChain(3) // 19, 20, 22
	require.NoError(t, err)
	require.Equal(t, []uint16{19, 20, 22}, tab.chainBlocks(b))
}
