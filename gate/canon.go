package gate

import (
	"fmt"

	"lukechampine.com/blake3"
)

// canonicalizeFirstOccurrence implements the single left-to-right
// wire-relabeling pass every basis shares (spec §4.A): the first wire
// encountered becomes 0, the next new wire becomes 1, and so on; gates are
// rewritten under that mapping and hashed as
// BLAKE3("<name>:<width>:<num_gates>:" || concat(serialize(g))).
//
// Factored once here instead of duplicated per basis (the Python original
// repeats this logic in ECA57Basis.canonicalize and would repeat it again
// in MCTBasis.canonicalize) since Go interfaces make sharing it free.
func canonicalizeFirstOccurrence(b Basis, gates []Gate, width uint8) ([]Gate, [32]byte, error) {
	if len(gates) == 0 {
		h := blake3.Sum256([]byte(fmt.Sprintf("%s:0:", b.Name())))
		return nil, h, nil
	}

	wireMap := make(map[Wire]Wire, int(width))
	next := Wire(0)
	for _, g := range gates {
		if err := b.Validate(g, width); err != nil {
			return nil, [32]byte{}, err
		}
		for _, w := range b.TouchedWires(g) {
			if _, ok := wireMap[w]; !ok {
				wireMap[w] = next
				next++
			}
		}
	}

	canonical := make([]Gate, len(gates))
	for i, g := range gates {
		canonical[i] = b.Remap(g, func(w Wire) Wire { return wireMap[w] })
	}

	hasher := blake3.New(32, nil)
	fmt.Fprintf(hasher, "%s:%d:%d:", b.Name(), width, len(gates))
	for _, g := range canonical {
		hasher.Write(b.SerializeGate(g))
	}

	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return canonical, out, nil
}

// Contains reports whether inner appears as a contiguous subsequence of
// outer's gates (both over the same width). Grounded on
// original_source/src/gates/eca57.py ECA57Circuit.contains; the
// non-probabilistic counterpart to the witness k-gram prefilter (§4.G,
// §8 property 7 narrows candidates, Contains confirms them).
func Contains(outer, inner Circuit) bool {
	if outer.Width != inner.Width {
		return false
	}
	n, m := len(outer.Gates), len(inner.Gates)
	if m == 0 {
		return true
	}
	if m > n {
		return false
	}
	for i := 0; i+m <= n; i++ {
		match := true
		for j := 0; j < m; j++ {
			if !wiresEqual(outer.Gates[i+j].Wires, inner.Gates[j].Wires) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func wiresEqual(a, b []Wire) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
