package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrontierDefaultTable(t *testing.T) {
	f := Frontier{MinWidth: 3, MaxWidth: 4}
	cells := f.Cells()
	require.NotEmpty(t, cells)
	require.Equal(t, Cell{Width: 3, GateCount: 2}, cells[0])
	last := cells[len(cells)-1]
	require.Equal(t, uint8(4), last.Width)
	require.Equal(t, DefaultMaxGCByWidth[4], last.GateCount)
}

func TestFrontierSingleGC(t *testing.T) {
	f := Frontier{MinWidth: 3, MaxWidth: 5, SingleGC: 4}
	cells := f.Cells()
	require.Len(t, cells, 3)
	for _, c := range cells {
		require.Equal(t, 4, c.GateCount)
	}
}

func TestCellStateString(t *testing.T) {
	require.Equal(t, "open", CellOpen.String())
	require.Equal(t, "closed", CellClosed.String())
	require.Equal(t, "failed", CellFailed.String())
}
