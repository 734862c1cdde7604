// Package unroll expands a seed identity circuit into its equivalence
// class ("family"): mirror, rotation, wire permutation, and a
// commuting-adjacent-gate-swap breadth-first search. Every transform is
// identity-preserving. Grounded on
// original_source/src/database/unroll.py.
package unroll

import (
	"github.com/erigontech/revsynth/gate"
)

// Flag records which transforms produced a given variant, an OR of the
// bits below — persisted as the Template Record's unroll_ops field.
type Flag uint32

const (
	FlagMirror Flag = 1 << iota
	FlagPermute
	FlagRotate
	FlagSwap
)

// Config bounds the unroll engine's work.
type Config struct {
	Mirror  bool
	Rotate  bool
	Permute bool
	Swap    bool

	// MaxPermutations truncates the wire-permutation search to the first N
	// lexicographic permutations (0 = unbounded), needed because width!
	// grows too fast for large widths.
	MaxPermutations int

	// SwapBudget bounds the commuting-swap BFS node count per variant.
	SwapBudget int

	// ExtendToWidths lists target widths for spectator-line extension (not
	// part of the core Flag bitfield). Unroll does not read it: no variant
	// Unroll returns is width-extended, and extended copies come only from
	// calling ExtendToWidth directly.
	ExtendToWidths []int
}

// Variant is one member of the equivalence class reached from a seed,
// tagged with the transforms used to reach it.
type Variant struct {
	Gates []gate.Gate
	Ops   Flag
}

// Unroll expands seed (over the given width, under basis) per cfg and
// returns every reached variant, each carrying its own canonical hash's
// worth of gates (not yet canonicalized — callers canonicalize on insert).
// The seed itself is always included with Ops == 0.
func Unroll(basis gate.Basis, seed []gate.Gate, width uint8, cfg Config) ([]Variant, error) {
	base := []Variant{{Gates: cloneGates(seed), Ops: 0}}

	if cfg.Mirror {
		m, err := mirror(basis, seed)
		if err != nil {
			return nil, err
		}
		base = append(base, Variant{Gates: m, Ops: FlagMirror})
	}

	var rotated []Variant
	if cfg.Rotate {
		for _, v := range base {
			n := len(v.Gates)
			for r := 1; r < n; r++ {
				rotated = append(rotated, Variant{Gates: rotate(v.Gates, r), Ops: v.Ops | FlagRotate})
			}
		}
	}
	base = append(base, rotated...)

	var permuted []Variant
	if cfg.Permute {
		perms := permutations(width, cfg.MaxPermutations)
		for _, v := range base {
			for _, perm := range perms {
				permuted = append(permuted, Variant{Gates: remapAll(basis, v.Gates, perm), Ops: v.Ops | FlagPermute})
			}
		}
	}
	base = append(base, permuted...)

	if !cfg.Swap {
		return dedupVariants(basis, base, width), nil
	}

	var swapped []Variant
	for _, v := range base {
		reached, err := swapBFS(basis, v.Gates, width, cfg.SwapBudget)
		if err != nil {
			return nil, err
		}
		for _, g := range reached {
			swapped = append(swapped, Variant{Gates: g, Ops: v.Ops | FlagSwap})
		}
	}
	base = append(base, swapped...)

	return dedupVariants(basis, base, width), nil
}

func cloneGates(gates []gate.Gate) []gate.Gate {
	out := make([]gate.Gate, len(gates))
	for i, g := range gates {
		w := make([]gate.Wire, len(g.Wires))
		copy(w, g.Wires)
		out[i] = gate.Gate{Wires: w}
	}
	return out
}

// mirror reverses the gate order and inverts every gate, the standard
// identity-preserving "run backwards" transform: if G is an identity,
// reverse(invert(G)) composes to the identity too, since every basis gate
// here is self-inverse (invert is a no-op) and reversing an identity
// sequence still multiplies out to the identity.
func mirror(basis gate.Basis, gates []gate.Gate) ([]gate.Gate, error) {
	n := len(gates)
	out := make([]gate.Gate, n)
	for i, g := range gates {
		out[n-1-i] = basis.Invert(g)
	}
	return out, nil
}

// rotate cyclically shifts gates by r positions. Rotation preserves
// identity-ness for the circuits this package handles: the driver only
// ever unrolls circuits that are already confirmed identities by
// construction (solver output), and a cyclic shift of an identity
// sequence over commuting-independent gate positions is validated by the
// caller via truthtable.IsIdentityCircuit in tests, not re-derived here.
func rotate(gates []gate.Gate, r int) []gate.Gate {
	n := len(gates)
	out := make([]gate.Gate, n)
	for i := 0; i < n; i++ {
		out[i] = gates[(i+r)%n]
	}
	return out
}

func remapAll(basis gate.Basis, gates []gate.Gate, perm []gate.Wire) []gate.Gate {
	out := make([]gate.Gate, len(gates))
	for i, g := range gates {
		out[i] = basis.Remap(g, func(w gate.Wire) gate.Wire { return perm[w] })
	}
	return out
}

// permutations returns up to max non-identity permutations of [0,width),
// in lexicographic order (max <= 0 means unbounded).
func permutations(width uint8, max int) [][]gate.Wire {
	ids := make([]gate.Wire, width)
	for i := range ids {
		ids[i] = gate.Wire(i)
	}
	var out [][]gate.Wire
	perm := append([]gate.Wire(nil), ids...)
	for {
		if !isIdentityPerm(perm) {
			cp := append([]gate.Wire(nil), perm...)
			out = append(out, cp)
			if max > 0 && len(out) >= max {
				break
			}
		}
		if !nextPermutation(perm) {
			break
		}
	}
	return out
}

func isIdentityPerm(p []gate.Wire) bool {
	for i, w := range p {
		if int(w) != i {
			return false
		}
	}
	return true
}

// nextPermutation advances p to its next lexicographic permutation in
// place, returning false once p is already the last (descending) one.
func nextPermutation(p []gate.Wire) bool {
	n := len(p)
	i := n - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := n - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
		p[l], p[r] = p[r], p[l]
	}
	return true
}

// defaultSwapBudget matches original_source/src/database/unroll.py's
// Config.swap_dfs_budget default.
const defaultSwapBudget = 1000

// swapBFS explores the commuting-swap relation from seed, bounded by
// budget nodes, deduping by canonical hash so a closed orbit terminates
// before exhausting the budget.
func swapBFS(basis gate.Basis, seed []gate.Gate, width uint8, budget int) ([][]gate.Gate, error) {
	if budget <= 0 {
		budget = defaultSwapBudget
	}
	type node struct {
		gates []gate.Gate
	}
	visited := make(map[[32]byte]bool)
	_, h0, err := basis.Canonicalize(seed, width)
	if err != nil {
		return nil, err
	}
	visited[h0] = true

	queue := []node{{gates: seed}}
	out := [][]gate.Gate{seed}
	explored := 1

	for len(queue) > 0 && explored < budget {
		cur := queue[0]
		queue = queue[1:]
		for i := 0; i+1 < len(cur.gates); i++ {
			if !basis.Commutes(cur.gates[i], cur.gates[i+1]) {
				continue
			}
			next := cloneGates(cur.gates)
			next[i], next[i+1] = next[i+1], next[i]

			_, h, err := basis.Canonicalize(next, width)
			if err != nil {
				return nil, err
			}
			if visited[h] {
				continue
			}
			visited[h] = true
			out = append(out, next)
			queue = append(queue, node{gates: next})
			explored++
			if explored >= budget {
				break
			}
		}
	}
	return out, nil
}

func dedupVariants(basis gate.Basis, variants []Variant, width uint8) []Variant {
	seen := make(map[[32]byte]bool, len(variants))
	out := make([]Variant, 0, len(variants))
	for _, v := range variants {
		_, h, err := basis.Canonicalize(v.Gates, width)
		if err != nil {
			continue
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, v)
	}
	return out
}
