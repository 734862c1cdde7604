package cnf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveNameCasing(t *testing.T) {
	b := NewBuilder()
	_, err := b.ReserveName("x", false)
	require.NoError(t, err)
	_, err = b.ReserveName("Y", false)
	require.Error(t, err)
	_, err = b.ReserveName("Aux", true)
	require.NoError(t, err)
	_, err = b.ReserveName("z", true)
	require.Error(t, err)
}

func TestReserveNameDuplicate(t *testing.T) {
	b := NewBuilder()
	_, err := b.ReserveName("a", false)
	require.NoError(t, err)
	_, err = b.ReserveName("a", false)
	require.Error(t, err)
}

func TestEqualsForcesSameValue(t *testing.T) {
	b := NewBuilder()
	a := b.MustReserveName("a", false)
	c := b.MustReserveName("c", false)
	b.Equals(a, c).SetLiteral(a)
	model := b.Model([]int{a.Value(), c.Value()})
	require.True(t, model["a"])
	require.True(t, model["c"])
}

func TestNandForbidsBoth(t *testing.T) {
	b := NewBuilder()
	a := b.MustReserveName("a", false)
	c := b.MustReserveName("c", false)
	b.Nand(a, c)
	require.Len(t, b.Clauses(), 1)
	require.ElementsMatch(t, []int{-a.Value(), -c.Value()}, b.Clauses()[0])
}

func TestExcludeAddsAuxEquivalence(t *testing.T) {
	b := NewBuilder()
	a := b.MustReserveName("a", false)
	c := b.MustReserveName("c", false)
	before := len(b.Clauses())
	b.Exclude([]Literal{a, c})
	require.Greater(t, len(b.Clauses()), before)
}

func TestToDIMACSHeader(t *testing.T) {
	b := NewBuilder()
	a := b.MustReserveName("a", false)
	b.SetLiteral(a)
	out := b.ToDIMACS()
	require.Contains(t, out, "p cnf 1 1")
	require.Contains(t, out, "1 0")
}

func TestXorSmall(t *testing.T) {
	b := NewBuilder()
	a := b.MustReserveName("a", false)
	c := b.MustReserveName("c", false)
	b.Xor([]Literal{a, c})
	// a XOR c: clauses should forbid (T,T) and (F,F)
	require.NotEmpty(t, b.Clauses())
}
