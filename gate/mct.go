package gate

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/exp/slices"
)

// MCTBasis implements Basis for multi-controlled-Toffoli gates: a target
// wire flipped when every control wire is set
// (target ^= AND(controls...)). The Python original
// (original_source/src/database/basis.py MCTBasis) is left unimplemented
// ("raise NotImplementedError" on every method); this is a clean-room
// implementation following the same canonicalization contract as
// ECA57Basis, per the Open Question resolution recorded in DESIGN.md
// (MCT is fully built, not stubbed).
type MCTBasis struct{}

func (MCTBasis) ID() BasisID  { return BasisMCT }
func (MCTBasis) Name() string { return "mct" }

// NewMCTGate builds a gate with Wires == [target, controls...], the
// controls sorted ascending so that two gates with the same control set
// are byte-identical regardless of discovery order.
func NewMCTGate(target Wire, controls []Wire) Gate {
	cs := append([]Wire(nil), controls...)
	slices.Sort(cs)
	return Gate{Wires: append([]Wire{target}, cs...)}
}

func (MCTBasis) Validate(g Gate, width uint8) error {
	if len(g.Wires) < 1 {
		return fmt.Errorf("%w: mct gate needs at least a target", ErrBadGate)
	}
	target := g.Wires[0]
	controls := g.Wires[1:]
	if len(controls) == 0 {
		return fmt.Errorf("%w: mct gate needs at least one control", ErrBadGate)
	}
	seen := roaring.New()
	for _, w := range g.Wires {
		if w >= width {
			return fmt.Errorf("%w: wire %d out of range for width %d", ErrBadGate, w, width)
		}
		if seen.Contains(uint32(w)) {
			return fmt.Errorf("%w: mct gate has a repeated wire %d", ErrBadGate, w)
		}
		seen.Add(uint32(w))
	}
	for i := 1; i < len(controls); i++ {
		if controls[i] <= controls[i-1] {
			return fmt.Errorf("%w: mct controls must be strictly sorted", ErrBadGate)
		}
	}
	_ = target
	return nil
}

// Invert returns g unchanged: like ECA57, MCT gates are involutions.
func (MCTBasis) Invert(g Gate) Gate {
	return Gate{Wires: append([]Wire(nil), g.Wires...)}
}

// Commutes reports whether two MCT gates can swap order without changing
// the composed permutation: true when neither gate's target wire appears
// among the other gate's control set, using roaring bitmaps to make the
// disjointness check cheap for wide control sets.
func (MCTBasis) Commutes(g1, g2 Gate) bool {
	t1, controls1 := g1.Wires[0], g1.Wires[1:]
	t2, controls2 := g2.Wires[0], g2.Wires[1:]
	bm2 := roaring.New()
	for _, w := range controls2 {
		bm2.Add(uint32(w))
	}
	bm1 := roaring.New()
	for _, w := range controls1 {
		bm1.Add(uint32(w))
	}
	return !bm2.Contains(uint32(t1)) && !bm1.Contains(uint32(t2))
}

func (MCTBasis) TouchedWires(g Gate) []Wire {
	return append([]Wire(nil), g.Wires...)
}

// Remap rewrites every wire with f and re-sorts the control portion,
// restoring the sorted-controls invariant the rest of the package relies on.
func (MCTBasis) Remap(g Gate, f func(Wire) Wire) Gate {
	target := f(g.Wires[0])
	controls := make([]Wire, len(g.Wires)-1)
	for i, w := range g.Wires[1:] {
		controls[i] = f(w)
	}
	return NewMCTGate(target, controls)
}

// SerializeGate packs [target, len(controls), controls...] so that gates
// with differing control-set sizes never collide under concatenation.
func (MCTBasis) SerializeGate(g Gate) []byte {
	out := make([]byte, 0, len(g.Wires)+1)
	out = append(out, g.Wires[0], byte(len(g.Wires)-1))
	out = append(out, g.Wires[1:]...)
	return out
}

func (b MCTBasis) Canonicalize(gates []Gate, width uint8) ([]Gate, [32]byte, error) {
	return canonicalizeFirstOccurrence(b, gates, width)
}

// AllMCTGates enumerates every valid MCT gate over width wires with a
// control-set size in [minControls, maxControls], target first then
// controls in ascending combination order — the MCT analog of
// AllECA57Gates used by the SAT encoder for stable variable numbering.
func AllMCTGates(width uint8, minControls, maxControls int) []Gate {
	var out []Gate
	wires := make([]Wire, width)
	for i := range wires {
		wires[i] = Wire(i)
	}
	for t := Wire(0); t < width; t++ {
		rest := make([]Wire, 0, width-1)
		for _, w := range wires {
			if w != t {
				rest = append(rest, w)
			}
		}
		for k := minControls; k <= maxControls && k <= len(rest); k++ {
			combinations(rest, k, func(combo []Wire) {
				out = append(out, NewMCTGate(t, combo))
			})
		}
	}
	return out
}

// combinations invokes emit once per k-combination of items, in
// lexicographic index order.
func combinations(items []Wire, k int, emit func([]Wire)) {
	n := len(items)
	if k == 0 {
		emit(nil)
		return
	}
	if k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]Wire, k)
		for i, ix := range idx {
			combo[i] = items[ix]
		}
		emit(combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
