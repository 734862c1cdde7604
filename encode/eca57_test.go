package encode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
)

func TestECA57EncoderBuilds(t *testing.T) {
	enc, err := NewECA57Encoder(3, 2, false, 0)
	require.NoError(t, err)
	require.NotEmpty(t, enc.Builder().Clauses())
	require.Equal(t, 2, enc.GateCount)
}

func TestECA57DecodeRoundTrip(t *testing.T) {
	enc, err := NewECA57Encoder(3, 2, false, 0)
	require.NoError(t, err)

	want := gate.Circuit{Width: 3, Gates: []gate.Gate{
		gate.NewECA57Gate(0, 1, 2),
		gate.NewECA57Gate(1, 2, 0),
	}}

	// Build a full assignment: every role variable explicit, matching want.
	numVars := enc.Builder().NumVars()
	assignment := make([]int, numVars)
	for v := 1; v <= numVars; v++ {
		assignment[v-1] = -v
	}
	setTrue := func(l interface{ Value() int }) {
		idx := l.Value()
		if idx < 0 {
			idx = -idx
		}
		assignment[idx-1] = idx
	}
	for g := 0; g < 2; g++ {
		gw := want.Gates[g]
		setTrue(enc.t[g][gw.Wires[0]])
		setTrue(enc.c1[g][gw.Wires[1]])
		setTrue(enc.c2[g][gw.Wires[2]])
	}

	got, err := enc.Decode(assignment)
	require.NoError(t, err)
	require.Equal(t, want.Width, got.Width)
	for i := range want.Gates {
		require.Equal(t, want.Gates[i].Wires, got.Gates[i].Wires)
	}
}

func TestECA57ExcludeCircuitAddsClause(t *testing.T) {
	enc, err := NewECA57Encoder(3, 2, false, 0)
	require.NoError(t, err)
	before := len(enc.Builder().Clauses())
	c := gate.Circuit{Width: 3, Gates: []gate.Gate{
		gate.NewECA57Gate(0, 1, 2),
		gate.NewECA57Gate(1, 2, 0),
	}}
	require.NoError(t, enc.ExcludeCircuit(c))
	require.Greater(t, len(enc.Builder().Clauses()), before)
}

func TestMCTEncoderBuilds(t *testing.T) {
	enc, err := NewMCTEncoder(2, 2, 1, 0)
	require.NoError(t, err)
	require.NotEmpty(t, enc.Builder().Clauses())
}
