package gate

import "fmt"

// ECA57Basis implements Basis for the ECA57 gate family: a single target
// wire flipped according to state[ctrl1] OR NOT state[ctrl2]
// (target ^= ctrl1 OR NOT ctrl2). Grounded on
// original_source/src/gates/eca57.py (ECA57Gate, ECA57Circuit,
// all_eca57_gates) and original_source/src/database/basis.py
// (ECA57Basis.canonicalize).
type ECA57Basis struct{}

func (ECA57Basis) ID() BasisID  { return BasisECA57 }
func (ECA57Basis) Name() string { return "eca57" }

// NewECA57Gate builds a gate with Wires == [target, ctrl1, ctrl2]. It does
// not validate; call Validate for that.
func NewECA57Gate(target, ctrl1, ctrl2 Wire) Gate {
	return Gate{Wires: []Wire{target, ctrl1, ctrl2}}
}

func (ECA57Basis) Validate(g Gate, width uint8) error {
	if len(g.Wires) != 3 {
		return fmt.Errorf("%w: eca57 gate needs 3 wires, got %d", ErrBadGate, len(g.Wires))
	}
	target, c1, c2 := g.Wires[0], g.Wires[1], g.Wires[2]
	for _, w := range g.Wires {
		if w >= width {
			return fmt.Errorf("%w: wire %d out of range for width %d", ErrBadGate, w, width)
		}
	}
	if target == c1 || target == c2 || c1 == c2 {
		return fmt.Errorf("%w: eca57 gate wires must be distinct (t=%d c1=%d c2=%d)", ErrBadGate, target, c1, c2)
	}
	return nil
}

// Invert returns g unchanged: ECA57 gates are involutions
// (applying target ^= ctrl1 OR NOT ctrl2 twice is the identity).
func (ECA57Basis) Invert(g Gate) Gate {
	return Gate{Wires: append([]Wire(nil), g.Wires...)}
}

// Commutes reports whether two ECA57 gates may swap order: true only when
// their wire sets are disjoint. Any pair sharing a wire (including
// identical gates and gates with a common target) is reported as not
// commuting.
func (ECA57Basis) Commutes(g1, g2 Gate) bool {
	for _, w1 := range g1.Wires {
		for _, w2 := range g2.Wires {
			if w1 == w2 {
				return false
			}
		}
	}
	return true
}

func (ECA57Basis) TouchedWires(g Gate) []Wire {
	return []Wire{g.Wires[0], g.Wires[1], g.Wires[2]}
}

func (ECA57Basis) Remap(g Gate, f func(Wire) Wire) Gate {
	return Gate{Wires: []Wire{f(g.Wires[0]), f(g.Wires[1]), f(g.Wires[2])}}
}

// SerializeGate packs [target, ctrl1, ctrl2] as three raw bytes, matching
// the fixed-width per-gate record used by the on-disk gates_encoded field
// (§3 Template Record).
func (ECA57Basis) SerializeGate(g Gate) []byte {
	return []byte{g.Wires[0], g.Wires[1], g.Wires[2]}
}

func (b ECA57Basis) Canonicalize(gates []Gate, width uint8) ([]Gate, [32]byte, error) {
	return canonicalizeFirstOccurrence(b, gates, width)
}

// AllECA57Gates enumerates every valid ECA57 gate over width wires, in the
// fixed (target, ctrl1, ctrl2) lexicographic order the SAT encoder relies on
// for stable one-hot variable numbering (§4.E). Ported from
// original_source/src/gates/eca57.py all_eca57_gates.
func AllECA57Gates(width uint8) []Gate {
	var out []Gate
	for t := Wire(0); t < width; t++ {
		for c1 := Wire(0); c1 < width; c1++ {
			if c1 == t {
				continue
			}
			for c2 := Wire(0); c2 < width; c2++ {
				if c2 == t || c2 == c1 {
					continue
				}
				out = append(out, NewECA57Gate(t, c1, c2))
			}
		}
	}
	return out
}
