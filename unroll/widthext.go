package unroll

import (
	"fmt"

	"github.com/erigontech/revsynth/gate"
)

// ExtendToWidth generates every way of inserting extraWires untouched
// spectator wires into seed (width w) to reach width w+extraWires, by
// choosing insertion positions among the enlarged wire range and shifting
// every existing wire index at or after each chosen position. An untouched
// wire trivially preserves identity, so every result is itself an
// identity whenever seed is. Supplemented feature (spec.md's Flag bitfield
// does not cover this; it is inserted as an ordinary new template with a
// fresh origin_template_id rather than a unroll_ops bit), grounded on
// original_source/src/gates/eca57.py add_empty_line / empty_line_extensions.
func ExtendToWidth(basis gate.Basis, seed []gate.Gate, width uint8, extraWires int) ([][]gate.Gate, error) {
	if extraWires <= 0 {
		return nil, fmt.Errorf("unroll: extraWires must be positive, got %d", extraWires)
	}
	newWidth := int(width) + extraWires
	positions := combinationsInt(newWidth, extraWires)

	out := make([][]gate.Gate, 0, len(positions))
	for _, inserted := range positions {
		insertedSet := make(map[int]bool, len(inserted))
		for _, p := range inserted {
			insertedSet[p] = true
		}
		// shift[oldWire] = number of inserted positions <= the new index
		// the old wire lands on; computed by walking new indices in order
		// and skipping inserted ones.
		mapping := make([]gate.Wire, width)
		newIdx := 0
		oldIdx := 0
		for newIdx < newWidth && oldIdx < int(width) {
			if insertedSet[newIdx] {
				newIdx++
				continue
			}
			mapping[oldIdx] = gate.Wire(newIdx)
			oldIdx++
			newIdx++
		}

		extended := make([]gate.Gate, len(seed))
		for i, g := range seed {
			extended[i] = basis.Remap(g, func(w gate.Wire) gate.Wire { return mapping[w] })
		}
		out = append(out, extended)
	}
	return out, nil
}

// combinationsInt returns every k-combination of indices in [0,n) as
// ascending-sorted slices, in lexicographic order.
func combinationsInt(n, k int) [][]int {
	var out [][]int
	if k > n || k < 0 {
		return out
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		cp := append([]int(nil), idx...)
		out = append(out, cp)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
