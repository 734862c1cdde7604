// Package driver runs the staggered enumeration frontier: for each
// (width, gate_count) cell, exclude known templates, call SAT, insert and
// unroll every new identity, and repeat until the cell is UNSAT. Grounded
// on original_source/scripts/explore_staggered.py and
// original_source/src/synthesizers/eca57_dimgroup_synthesizer.py.
package driver

// DefaultMaxGCByWidth is the staggered frontier's per-width gate-count
// ceiling, lifted directly from the published table in
// original_source/scripts/explore_staggered.py (MAX_GC_BY_WIDTH).
var DefaultMaxGCByWidth = map[uint8]int{
	3: 12,
	4: 10,
	5: 8,
	6: 7,
	7: 6,
	8: 6,
	9: 6,
}

// Cell identifies one (width, gate_count) point on the frontier.
type Cell struct {
	Width     uint8
	GateCount int
}

// CellState tracks a cell's lifecycle: OPEN -> SAT -> OPEN ... ->
// UNSAT(closed), or Failed if any solve call for the cell returns an error.
type CellState int

const (
	CellOpen CellState = iota
	CellClosed
	CellFailed
)

func (s CellState) String() string {
	switch s {
	case CellOpen:
		return "open"
	case CellClosed:
		return "closed"
	case CellFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Frontier enumerates the (width, gate_count) cells to visit, in the
// staggered order of §4.H: width ascending from minWidth to maxWidth, and
// for each width, gate_count ascending from 2 to the width's ceiling in
// maxGCByWidth (falling back to a flat default when a width is absent
// from the table).
type Frontier struct {
	MinWidth     uint8
	MaxWidth     uint8
	MaxGCByWidth map[uint8]int
	// SingleGC, if non-zero, restricts every width to exactly this
	// gate-count (the cluster-job partitioning override of §4.H).
	SingleGC int
}

// Cells returns the ordered list of cells this frontier covers.
func (f Frontier) Cells() []Cell {
	table := f.MaxGCByWidth
	if table == nil {
		table = DefaultMaxGCByWidth
	}
	var out []Cell
	for w := f.MinWidth; w <= f.MaxWidth; w++ {
		if f.SingleGC > 0 {
			out = append(out, Cell{Width: w, GateCount: f.SingleGC})
			continue
		}
		ceiling, ok := table[w]
		if !ok {
			ceiling = 6
		}
		for gc := 2; gc <= ceiling; gc++ {
			out = append(out, Cell{Width: w, GateCount: gc})
		}
	}
	return out
}
