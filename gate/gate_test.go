package gate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestECA57SelfInverse(t *testing.T) {
	b := ECA57Basis{}
	g := NewECA57Gate(0, 1, 2)
	require.NoError(t, b.Validate(g, 3))
	inv := b.Invert(g)
	require.Equal(t, g.Wires, inv.Wires)
}

func TestMCTSelfInverse(t *testing.T) {
	b := MCTBasis{}
	g := NewMCTGate(0, []Wire{1, 2})
	require.NoError(t, b.Validate(g, 3))
	inv := b.Invert(g)
	require.Equal(t, g.Wires, inv.Wires)
}

func TestCanonicalStability(t *testing.T) {
	b := ECA57Basis{}
	gates := []Gate{NewECA57Gate(0, 1, 2), NewECA57Gate(1, 2, 0)}
	canon1, hash1, err := b.Canonicalize(gates, 3)
	require.NoError(t, err)
	canon2, hash2, err := b.Canonicalize(canon1, 3)
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)
	require.Equal(t, canon1, canon2)
}

func TestWireRelabelingInvariance(t *testing.T) {
	b := ECA57Basis{}
	gates := []Gate{NewECA57Gate(0, 1, 2), NewECA57Gate(1, 2, 0)}
	_, hash1, err := b.Canonicalize(gates, 3)
	require.NoError(t, err)

	// permutation: 0->2, 1->0, 2->1
	perm := map[Wire]Wire{0: 2, 1: 0, 2: 1}
	permuted := make([]Gate, len(gates))
	for i, g := range gates {
		permuted[i] = b.Remap(g, func(w Wire) Wire { return perm[w] })
	}
	_, hash2, err := b.Canonicalize(permuted, 3)
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)
}

func TestMCTWireRelabelingInvariance(t *testing.T) {
	b := MCTBasis{}
	gates := []Gate{NewMCTGate(0, []Wire{1, 2}), NewMCTGate(1, []Wire{0, 2})}
	_, hash1, err := b.Canonicalize(gates, 3)
	require.NoError(t, err)

	perm := map[Wire]Wire{0: 2, 1: 0, 2: 1}
	permuted := make([]Gate, len(gates))
	for i, g := range gates {
		permuted[i] = b.Remap(g, func(w Wire) Wire { return perm[w] })
	}
	_, hash2, err := b.Canonicalize(permuted, 3)
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)
}

func TestCommutesDisjointGates(t *testing.T) {
	b := ECA57Basis{}
	g1 := NewECA57Gate(0, 1, 2)
	g2 := NewECA57Gate(1, 0, 2)
	// g1 writes wire 0 which g2 reads as control -> should not commute
	require.False(t, b.Commutes(g1, g2))

	g3 := NewECA57Gate(2, 0, 1)
	g4 := NewECA57Gate(2, 1, 0)
	// Same target, different control order -> does not commute in general
	require.False(t, b.Commutes(g3, g4))
}

func TestMCTCommutes(t *testing.T) {
	b := MCTBasis{}
	g1 := NewMCTGate(0, []Wire{2, 3})
	g2 := NewMCTGate(1, []Wire{2, 3})
	require.True(t, b.Commutes(g1, g2))

	g3 := NewMCTGate(0, []Wire{1, 2})
	require.True(t, b.Commutes(g1, g3))
}

func TestContains(t *testing.T) {
	outer := Circuit{Width: 3, Gates: []Gate{
		NewECA57Gate(0, 1, 2), NewECA57Gate(1, 2, 0), NewECA57Gate(2, 0, 1),
	}}
	inner := Circuit{Width: 3, Gates: []Gate{
		NewECA57Gate(1, 2, 0), NewECA57Gate(2, 0, 1),
	}}
	require.True(t, Contains(outer, inner))

	notInner := Circuit{Width: 3, Gates: []Gate{
		NewECA57Gate(2, 0, 1), NewECA57Gate(1, 2, 0),
	}}
	require.False(t, Contains(outer, notInner))
}

func TestAllECA57GatesCount(t *testing.T) {
	gates := AllECA57Gates(3)
	// width=3: 3 targets * 2 choices for c1 * 1 choice for c2 = 6
	require.Len(t, gates, 6)
}

func TestAllMCTGatesCount(t *testing.T) {
	gates := AllMCTGates(3, 1, 2)
	// target has 2 other wires: C(2,1)+C(2,2) = 2+1 = 3, times 3 targets = 9
	require.Len(t, gates, 9)
}

func TestLookup(t *testing.T) {
	b, err := Lookup("eca57")
	require.NoError(t, err)
	require.Equal(t, BasisECA57, b.ID())

	_, err = Lookup("bogus")
	require.ErrorIs(t, err, ErrUnknownBasis)
}
