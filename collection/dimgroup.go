// Package collection provides a store-less, in-memory grid of identity
// circuits grouped by (width, gate_count), used by CLI commands that
// operate on a single enumeration result without touching bbolt.
// Grounded on original_source/circuit/dim_group.py and
// original_source/circuit/collection.py.
package collection

import (
	"fmt"

	"github.com/erigontech/revsynth/gate"
)

// DimGroup holds every circuit sharing one (width, gate_count) pair.
type DimGroup struct {
	Width     uint8
	GateCount int
	Circuits  []gate.Circuit
}

// NewDimGroup returns an empty group for the given dimensions.
func NewDimGroup(width uint8, gateCount int) *DimGroup {
	return &DimGroup{Width: width, GateCount: gateCount}
}

func (d *DimGroup) Len() int { return len(d.Circuits) }

func (d *DimGroup) validate(c gate.Circuit) error {
	if int(c.Width) != int(d.Width) || len(c.Gates) != d.GateCount {
		return fmt.Errorf("collection: circuit (%d,%d) does not match group (%d,%d)",
			c.Width, len(c.Gates), d.Width, d.GateCount)
	}
	return nil
}

// Append adds circuit to the group, rejecting dimension mismatches.
func (d *DimGroup) Append(c gate.Circuit) error {
	if err := d.validate(c); err != nil {
		return err
	}
	d.Circuits = append(d.Circuits, c)
	return nil
}

// Extend appends every circuit in cs.
func (d *DimGroup) Extend(cs []gate.Circuit) error {
	for _, c := range cs {
		if err := d.Append(c); err != nil {
			return err
		}
	}
	return nil
}

// Join merges other's circuits into d.
func (d *DimGroup) Join(other *DimGroup) error {
	if other.Width != d.Width || other.GateCount != d.GateCount {
		return fmt.Errorf("collection: join dimension mismatch (%d,%d) != (%d,%d)",
			d.Width, d.GateCount, other.Width, other.GateCount)
	}
	d.Circuits = append(d.Circuits, other.Circuits...)
	return nil
}

// RemoveReducibles drops every circuit that contains any of reductors'
// circuits as a contiguous subcircuit, leaving only the irreducible
// representatives of this group.
func (d *DimGroup) RemoveReducibles(reductors *DimGroup) error {
	if reductors.Width != d.Width {
		return fmt.Errorf("collection: reductor width %d != group width %d", reductors.Width, d.Width)
	}
	if reductors.GateCount > d.GateCount {
		return fmt.Errorf("collection: reductor gate count %d > group gate count %d", reductors.GateCount, d.GateCount)
	}
	kept := d.Circuits[:0:0]
	for _, c := range d.Circuits {
		reducible := false
		for _, r := range reductors.Circuits {
			if gate.Contains(c, r) {
				reducible = true
				break
			}
		}
		if !reducible {
			kept = append(kept, c)
		}
	}
	d.Circuits = kept
	return nil
}

// RemoveDuplicates drops circuits that are canonically identical to an
// earlier circuit in the group, using basis to canonicalize.
func (d *DimGroup) RemoveDuplicates(basis gate.Basis) error {
	seen := make(map[[32]byte]bool, len(d.Circuits))
	kept := d.Circuits[:0:0]
	for _, c := range d.Circuits {
		_, hash, err := basis.Canonicalize(c.Gates, c.Width)
		if err != nil {
			return err
		}
		if seen[hash] {
			continue
		}
		seen[hash] = true
		kept = append(kept, c)
	}
	d.Circuits = kept
	return nil
}
