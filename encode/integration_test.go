package encode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/sat"
	"github.com/erigontech/revsynth/truthtable"
)

// TestECA57SolveDecodeIsIdentity exercises the full encode -> gini solve ->
// decode path for the width=3, gc=2 cell (scenario 1): every model the
// solver hands back must decode to an actual identity circuit. This is the
// end-to-end check that would have caught an inverted data-flow gadget;
// TestECA57DecodeRoundTrip only feeds Decode a hand-built assignment, it
// never asks a real solver for one.
func TestECA57SolveDecodeIsIdentity(t *testing.T) {
	enc, err := NewECA57Encoder(3, 2, false, 0)
	require.NoError(t, err)

	solver := sat.GiniSolver{}
	result, err := solver.Solve(context.Background(), enc.Builder().NumVars(), enc.Builder().Clauses())
	require.NoError(t, err)
	require.True(t, result.SAT, "width=3 gc=2 cell must be satisfiable (G;G identities exist)")

	circuit, err := enc.Decode(result.Assignment)
	require.NoError(t, err)

	isIdentity, err := truthtable.IsIdentityCircuit(gate.ECA57Basis{}, circuit)
	require.NoError(t, err)
	require.True(t, isIdentity, "decoded circuit %+v does not compose to the identity", circuit.Gates)
}

// TestMCTCellCountMatchesTableII solves the width=2, gc=2 MCT cell to
// closure (solve, decode, exclude, repeat until UNSAT) and checks that
// every model is an identity and that exactly one distinct canonical
// template results, matching the published Table-II count for that cell
// (scenario 6).
func TestMCTCellCountMatchesTableII(t *testing.T) {
	enc, err := NewMCTEncoder(2, 2, 1, 0)
	require.NoError(t, err)

	solver := sat.GiniSolver{}
	basis := gate.MCTBasis{}
	seen := map[[32]byte]bool{}

	for {
		result, err := solver.Solve(context.Background(), enc.Builder().NumVars(), enc.Builder().Clauses())
		require.NoError(t, err)
		if !result.SAT {
			break
		}

		circuit, err := enc.Decode(result.Assignment)
		require.NoError(t, err)

		isIdentity, err := truthtable.IsIdentityCircuit(basis, circuit)
		require.NoError(t, err)
		require.True(t, isIdentity, "decoded circuit %+v does not compose to the identity", circuit.Gates)

		_, hash, err := basis.Canonicalize(circuit.Gates, circuit.Width)
		require.NoError(t, err)
		seen[hash] = true

		require.NoError(t, enc.ExcludeCircuit(circuit))
	}

	require.Equal(t, 1, len(seen), "width=2 gc=2 MCT cell should yield exactly one canonical template")
}
