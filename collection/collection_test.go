package collection

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
)

func sampleCircuit() gate.Circuit {
	g := gate.NewECA57Gate(0, 1, 2)
	return gate.Circuit{Width: 3, Gates: []gate.Gate{g, g}}
}

func TestDimGroupAppendRejectsDimensionMismatch(t *testing.T) {
	dg := NewDimGroup(3, 2)
	require.NoError(t, dg.Append(sampleCircuit()))
	require.Error(t, dg.Append(gate.Circuit{Width: 4, Gates: sampleCircuit().Gates}))
}

func TestDimGroupRemoveDuplicates(t *testing.T) {
	dg := NewDimGroup(3, 2)
	require.NoError(t, dg.Append(sampleCircuit()))
	require.NoError(t, dg.Append(sampleCircuit()))
	require.NoError(t, dg.RemoveDuplicates(gate.ECA57Basis{}))
	require.Equal(t, 1, dg.Len())
}

func TestDimGroupRemoveReducibles(t *testing.T) {
	small := NewDimGroup(3, 2)
	require.NoError(t, small.Append(sampleCircuit()))

	big := NewDimGroup(3, 4)
	g := gate.NewECA57Gate(0, 1, 2)
	circ := gate.Circuit{Width: 3, Gates: []gate.Gate{g, g, g, g}}
	require.NoError(t, big.Append(circ))

	require.NoError(t, big.RemoveReducibles(small))
	require.Equal(t, 0, big.Len())
}

func TestCollectionJSONRoundTripShape(t *testing.T) {
	basis := gate.ECA57Basis{}
	c := New(basis, 3, 2)
	require.NoError(t, c.Group(3, 2).Append(sampleCircuit()))

	var buf bytes.Buffer
	require.NoError(t, c.WriteJSON(&buf))
	require.Contains(t, buf.String(), `"3_2"`)
}

func TestCollectionCompactRoundTrip(t *testing.T) {
	basis := gate.ECA57Basis{}
	c := New(basis, 3, 2)
	require.NoError(t, c.Group(3, 2).Append(sampleCircuit()))

	var buf bytes.Buffer
	require.NoError(t, c.WriteCompact(&buf))

	c2 := New(basis, 3, 2)
	require.NoError(t, c2.ReadCompact(&buf))
	require.Equal(t, 1, c2.Group(3, 2).Len())
	require.Equal(t, sampleCircuit().Gates, c2.Group(3, 2).Circuits[0].Gates)
}
