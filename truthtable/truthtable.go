// Package truthtable provides a dense boolean simulator used to check
// whether a decoded circuit is the identity permutation and to drive the
// SAT encoder's target spec. Grounded on
// original_source/src/truth_table/truth_table.py.
package truthtable

import (
	"fmt"

	"github.com/erigontech/revsynth/gate"
)

// TruthTable holds one row per input word i in [0, 2^width), each row a
// length-width bit vector. Row i initially encodes the integer i, LSB
// (wire 0) first.
type TruthTable struct {
	Width uint8
	rows  [][]bool
}

// New builds the identity truth table for width wires.
func New(width uint8) *TruthTable {
	n := 1 << width
	rows := make([][]bool, n)
	for i := 0; i < n; i++ {
		row := make([]bool, width)
		for w := uint8(0); w < width; w++ {
			row[w] = (i>>w)&1 == 1
		}
		rows[i] = row
	}
	return &TruthTable{Width: width, rows: rows}
}

// Row returns row i's bits, wire 0 first. The returned slice aliases
// internal state; callers must not mutate it.
func (t *TruthTable) Row(i int) []bool {
	return t.rows[i]
}

// X applies a NOT gate on wire target to every row.
func (t *TruthTable) X(target gate.Wire) {
	for _, row := range t.rows {
		row[target] = !row[target]
	}
}

// CX applies an ECA57 gate: target ^= ctrl1 OR NOT ctrl2.
func (t *TruthTable) CX(target, ctrl1, ctrl2 gate.Wire) {
	for _, row := range t.rows {
		if row[ctrl1] || !row[ctrl2] {
			row[target] = !row[target]
		}
	}
}

// MCX applies a multi-controlled-Toffoli gate: target ^= AND(controls...).
func (t *TruthTable) MCX(controls []gate.Wire, target gate.Wire) {
	for _, row := range t.rows {
		all := true
		for _, c := range controls {
			if !row[c] {
				all = false
				break
			}
		}
		if all {
			row[target] = !row[target]
		}
	}
}

// ApplyGate dispatches on basis to CX or MCX.
func (t *TruthTable) ApplyGate(basis gate.Basis, g gate.Gate) error {
	switch basis.ID() {
	case gate.BasisECA57:
		if len(g.Wires) != 3 {
			return fmt.Errorf("truthtable: eca57 gate needs 3 wires, got %d", len(g.Wires))
		}
		t.CX(g.Wires[0], g.Wires[1], g.Wires[2])
	case gate.BasisMCT:
		if len(g.Wires) < 1 {
			return fmt.Errorf("truthtable: mct gate needs a target")
		}
		t.MCX(g.Wires[1:], g.Wires[0])
	default:
		return fmt.Errorf("truthtable: unsupported basis %s", basis.Name())
	}
	return nil
}

// ApplyCircuit applies every gate of c in order.
func (t *TruthTable) ApplyCircuit(basis gate.Basis, c gate.Circuit) error {
	for _, g := range c.Gates {
		if err := t.ApplyGate(basis, g); err != nil {
			return err
		}
	}
	return nil
}

// IsIdentity reports whether every row i still encodes the integer i.
func (t *TruthTable) IsIdentity() bool {
	for i, row := range t.rows {
		for w := uint8(0); w < t.Width; w++ {
			if row[w] != ((i>>w)&1 == 1) {
				return false
			}
		}
	}
	return true
}

// Equal reports whether t and o hold the same rows.
func (t *TruthTable) Equal(o *TruthTable) bool {
	if t.Width != o.Width || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.rows {
		for w := uint8(0); w < t.Width; w++ {
			if t.rows[i][w] != o.rows[i][w] {
				return false
			}
		}
	}
	return true
}

// IsIdentityCircuit builds a fresh truth table, applies c, and reports
// whether the result is the identity permutation — the authoritative
// "is this actually an identity" check used by tests, independent of the
// SAT encoder's own internal bookkeeping.
func IsIdentityCircuit(basis gate.Basis, c gate.Circuit) (bool, error) {
	tt := New(c.Width)
	if err := tt.ApplyCircuit(basis, c); err != nil {
		return false, err
	}
	return tt.IsIdentity(), nil
}
