package unroll

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/truthtable"
)

func seedCircuit() (gate.Basis, []gate.Gate, uint8) {
	basis := gate.ECA57Basis{}
	seed := []gate.Gate{
		gate.NewECA57Gate(0, 1, 2),
		gate.NewECA57Gate(1, 2, 0),
		gate.NewECA57Gate(1, 2, 0),
		gate.NewECA57Gate(0, 1, 2),
	}
	return basis, seed, 3
}

func TestUnrollIncludesSeed(t *testing.T) {
	basis, seed, width := seedCircuit()
	variants, err := Unroll(basis, seed, width, Config{})
	require.NoError(t, err)
	require.NotEmpty(t, variants)
	require.Equal(t, seed, variants[0].Gates)
	require.Equal(t, Flag(0), variants[0].Ops)
}

func TestUnrollPreservesIdentity(t *testing.T) {
	basis, seed, width := seedCircuit()
	ok, err := truthtable.IsIdentityCircuit(basis, gate.Circuit{Width: width, Gates: seed})
	require.NoError(t, err)
	require.True(t, ok, "seed must be an identity for this property test to be meaningful")

	variants, err := Unroll(basis, seed, width, Config{Mirror: true, Rotate: true, Swap: true, SwapBudget: 20})
	require.NoError(t, err)
	for _, v := range variants {
		isIdentity, err := truthtable.IsIdentityCircuit(basis, gate.Circuit{Width: width, Gates: v.Gates})
		require.NoError(t, err)
		require.True(t, isIdentity, "every unroll variant must remain an identity")
	}
}

func TestPermutationsExcludesIdentity(t *testing.T) {
	perms := permutations(3, 0)
	for _, p := range perms {
		require.False(t, isIdentityPerm(p))
	}
	// 3! - 1 = 5 non-identity permutations
	require.Len(t, perms, 5)
}

func TestPermutationsMaxTruncates(t *testing.T) {
	perms := permutations(4, 3)
	require.Len(t, perms, 3)
}

func TestExtendToWidthPreservesGateCount(t *testing.T) {
	basis, seed, width := seedCircuit()
	results, err := ExtendToWidth(basis, seed, width, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		require.Len(t, r, len(seed))
	}
}

func TestExtendToWidthPreservesIdentity(t *testing.T) {
	basis, seed, width := seedCircuit()
	results, err := ExtendToWidth(basis, seed, width, 1)
	require.NoError(t, err)
	for _, r := range results {
		ok, err := truthtable.IsIdentityCircuit(basis, gate.Circuit{Width: width + 1, Gates: r})
		require.NoError(t, err)
		require.True(t, ok)
	}
}
