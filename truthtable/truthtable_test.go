package truthtable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
)

func TestIdentityTableStartsIdentity(t *testing.T) {
	tt := New(3)
	require.True(t, tt.IsIdentity())
}

func TestDoubleGateIsIdentity(t *testing.T) {
	basis := gate.ECA57Basis{}
	c := gate.Circuit{Width: 3, Gates: []gate.Gate{
		gate.NewECA57Gate(0, 1, 2),
		gate.NewECA57Gate(0, 1, 2),
	}}
	ok, err := IsIdentityCircuit(basis, c)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSingleGateIsNotIdentity(t *testing.T) {
	basis := gate.ECA57Basis{}
	c := gate.Circuit{Width: 3, Gates: []gate.Gate{
		gate.NewECA57Gate(0, 1, 2),
	}}
	ok, err := IsIdentityCircuit(basis, c)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMCTDoubleGateIsIdentity(t *testing.T) {
	basis := gate.MCTBasis{}
	c := gate.Circuit{Width: 2, Gates: []gate.Gate{
		gate.NewMCTGate(1, []gate.Wire{0}),
		gate.NewMCTGate(1, []gate.Wire{0}),
	}}
	ok, err := IsIdentityCircuit(basis, c)
	require.NoError(t, err)
	require.True(t, ok)
}
