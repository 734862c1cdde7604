// Package encode builds the CNF identity-circuit encoding described in
// spec.md §4.E: one-hot gate-role variables plus per-word data-flow bits,
// asserting that a circuit of gc gates over width wires composes to the
// identity permutation. Grounded on
// original_source/src/synthesizers/eca57_synthesizer.py.
package encode

import (
	"fmt"

	"github.com/erigontech/revsynth/cnf"
	"github.com/erigontech/revsynth/gate"
)

// ECA57Encoder builds and maintains the CNF for one (width, gateCount)
// cell, across a sequence of solve/exclude rounds.
type ECA57Encoder struct {
	Width     uint8
	GateCount int

	builder *cnf.Builder

	// t[g][w], c1[g][w], c2[g][w]: one-hot gate-role literals.
	t, c1, c2 [][]cnf.Literal

	// d[i][g][w]: data bit on wire w after gate g, for input word i.
	d [][][]cnf.Literal

	hardenNoSpectator bool
	exactControlCount int // <=0 disables

	auxOrSeq int
}

// NewECA57Encoder allocates all structural and data-flow variables and
// clauses for one identity cell. noSpectator requires every wire to play
// some gate role at least once; exactControls, if > 0, requires the total
// count of control-role assignments across the whole circuit to equal
// exactly that value.
func NewECA57Encoder(width uint8, gateCount int, noSpectator bool, exactControls int) (*ECA57Encoder, error) {
	if width < 3 {
		return nil, fmt.Errorf("encode: eca57 requires width >= 3, got %d", width)
	}
	if gateCount < 0 {
		return nil, fmt.Errorf("encode: negative gate count %d", gateCount)
	}

	e := &ECA57Encoder{
		Width:             width,
		GateCount:         gateCount,
		builder:           cnf.NewBuilder(),
		hardenNoSpectator: noSpectator,
		exactControlCount: exactControls,
	}

	if err := e.buildStructural(); err != nil {
		return nil, err
	}
	if err := e.buildDataFlow(); err != nil {
		return nil, err
	}
	if noSpectator {
		e.assertNoSpectator()
	}
	if exactControls > 0 {
		e.assertExactControlCount(exactControls)
	}
	return e, nil
}

func (e *ECA57Encoder) buildStructural() error {
	w := int(e.Width)
	e.t = make([][]cnf.Literal, e.GateCount)
	e.c1 = make([][]cnf.Literal, e.GateCount)
	e.c2 = make([][]cnf.Literal, e.GateCount)

	for g := 0; g < e.GateCount; g++ {
		e.t[g] = make([]cnf.Literal, w)
		e.c1[g] = make([]cnf.Literal, w)
		e.c2[g] = make([]cnf.Literal, w)
		for wi := 0; wi < w; wi++ {
			var err error
			if e.t[g][wi], err = e.builder.ReserveName(fmt.Sprintf("t_%d_%d", g, wi), false); err != nil {
				return err
			}
			if e.c1[g][wi], err = e.builder.ReserveName(fmt.Sprintf("c1_%d_%d", g, wi), false); err != nil {
				return err
			}
			if e.c2[g][wi], err = e.builder.ReserveName(fmt.Sprintf("c2_%d_%d", g, wi), false); err != nil {
				return err
			}
		}
		e.builder.Exactly(e.t[g], 1)
		e.builder.Exactly(e.c1[g], 1)
		e.builder.Exactly(e.c2[g], 1)
		for wi := 0; wi < w; wi++ {
			e.builder.Nand(e.t[g][wi], e.c1[g][wi])
			e.builder.Nand(e.t[g][wi], e.c2[g][wi])
			e.builder.Nand(e.c1[g][wi], e.c2[g][wi])
		}
	}
	return nil
}

func (e *ECA57Encoder) buildDataFlow() error {
	w := int(e.Width)
	n := 1 << w
	e.d = make([][][]cnf.Literal, n)

	for i := 0; i < n; i++ {
		e.d[i] = make([][]cnf.Literal, e.GateCount+1)
		for g := 0; g <= e.GateCount; g++ {
			e.d[i][g] = make([]cnf.Literal, w)
			for wi := 0; wi < w; wi++ {
				lit, err := e.builder.ReserveName(fmt.Sprintf("d_%d_%d_%d", i, g, wi), false)
				if err != nil {
					return err
				}
				e.d[i][g][wi] = lit
			}
		}
		// Input layer fixes the word's bits directly.
		for wi := 0; wi < w; wi++ {
			val := (i>>wi)&1 == 1
			e.builder.SetLiteral(withValue(e.d[i][0][wi], val))
		}

		for g := 0; g < e.GateCount; g++ {
			ctrl1, err := e.reserveInternal(fmt.Sprintf("Ctrl1_%d_%d", i, g))
			if err != nil {
				return err
			}
			ctrl2, err := e.reserveInternal(fmt.Sprintf("Ctrl2_%d_%d", i, g))
			if err != nil {
				return err
			}
			orCond, err := e.reserveInternal(fmt.Sprintf("Or_%d_%d", i, g))
			if err != nil {
				return err
			}

			and1 := make([]cnf.Literal, w)
			and2 := make([]cnf.Literal, w)
			for wi := 0; wi < w; wi++ {
				a1, err := e.reserveInternal(fmt.Sprintf("And1_%d_%d_%d", i, g, wi))
				if err != nil {
					return err
				}
				e.builder.EqualsAnd(a1, []cnf.Literal{e.c1[g][wi], e.d[i][g][wi]})
				and1[wi] = a1

				a2, err := e.reserveInternal(fmt.Sprintf("And2_%d_%d_%d", i, g, wi))
				if err != nil {
					return err
				}
				e.builder.EqualsAnd(a2, []cnf.Literal{e.c2[g][wi], e.d[i][g][wi]})
				and2[wi] = a2
			}
			e.builder.EqualsOr(ctrl1, and1)
			e.builder.EqualsOr(ctrl2, and2)
			orLit, err := e.orOfTwo(ctrl1, ctrl2.Neg())
			if err != nil {
				return err
			}
			e.builder.Equals(orCond, orLit)

			for wi := 0; wi < w; wi++ {
				sw, err := e.reserveInternal(fmt.Sprintf("Switch_%d_%d_%d", i, g, wi))
				if err != nil {
					return err
				}
				e.builder.EqualsAnd(sw, []cnf.Literal{orCond, e.t[g][wi]})

				nxt, err := e.reserveInternal(fmt.Sprintf("Xor_%d_%d_%d", i, g, wi))
				if err != nil {
					return err
				}
				// Xor asserts odd parity (⊕L = true); nxt must equal
				// d_cur XOR sw, i.e. nxt ⊕ d_cur ⊕ sw = false (even), so
				// negate nxt to flip the asserted parity.
				e.builder.Xor([]cnf.Literal{nxt.Neg(), e.d[i][g][wi], sw})
				e.builder.Equals(e.d[i][g+1][wi], nxt)
			}
		}

		// Output layer must equal the input word again (identity).
		for wi := 0; wi < w; wi++ {
			val := (i>>wi)&1 == 1
			e.builder.SetLiteral(withValue(e.d[i][e.GateCount][wi], val))
		}
	}
	return nil
}

func (e *ECA57Encoder) reserveInternal(name string) (cnf.Literal, error) {
	return e.builder.ReserveName(name, true)
}

func withValue(l cnf.Literal, val bool) cnf.Literal {
	if val {
		return l
	}
	return l.Neg()
}

// orOfTwo asserts and returns a fresh literal equal to a OR b, since the
// builder only exposes EqualsOr over a slice.
func (e *ECA57Encoder) orOfTwo(a, c cnf.Literal) (cnf.Literal, error) {
	aux, err := e.reserveInternal(fmt.Sprintf("Or2_%d", e.auxOrSeq))
	if err != nil {
		return cnf.Literal{}, err
	}
	e.auxOrSeq++
	e.builder.EqualsOr(aux, []cnf.Literal{a, c})
	return aux, nil
}

func (e *ECA57Encoder) assertNoSpectator() {
	w := int(e.Width)
	for wi := 0; wi < w; wi++ {
		var roles []cnf.Literal
		for g := 0; g < e.GateCount; g++ {
			roles = append(roles, e.t[g][wi], e.c1[g][wi], e.c2[g][wi])
		}
		e.builder.AtLeast(roles, 1)
	}
}

func (e *ECA57Encoder) assertExactControlCount(k int) {
	var roles []cnf.Literal
	for g := 0; g < e.GateCount; g++ {
		roles = append(roles, e.c1[g]...)
		roles = append(roles, e.c2[g]...)
	}
	e.builder.Exactly(roles, k)
}

// Builder exposes the underlying CNF builder, for the driver to pass to a
// SAT backend and to call ToDIMACS for export.
func (e *ECA57Encoder) Builder() *cnf.Builder { return e.builder }

// Decode reads the one-hot role assignments out of a satisfying
// assignment and reconstructs the concrete (target, ctrl1, ctrl2) gate
// sequence.
func (e *ECA57Encoder) Decode(assignment []int) (gate.Circuit, error) {
	model := e.builder.Model(assignment)
	gates := make([]gate.Gate, e.GateCount)
	for g := 0; g < e.GateCount; g++ {
		target, err := onlyTrue(model, e.t[g])
		if err != nil {
			return gate.Circuit{}, fmt.Errorf("encode: gate %d target: %w", g, err)
		}
		ctrl1, err := onlyTrue(model, e.c1[g])
		if err != nil {
			return gate.Circuit{}, fmt.Errorf("encode: gate %d ctrl1: %w", g, err)
		}
		ctrl2, err := onlyTrue(model, e.c2[g])
		if err != nil {
			return gate.Circuit{}, fmt.Errorf("encode: gate %d ctrl2: %w", g, err)
		}
		gates[g] = gate.NewECA57Gate(gate.Wire(target), gate.Wire(ctrl1), gate.Wire(ctrl2))
	}
	return gate.Circuit{Width: e.Width, Gates: gates}, nil
}

func onlyTrue(model map[string]bool, roles []cnf.Literal) (int, error) {
	found := -1
	for i, l := range roles {
		if model[l.Name()] {
			if found != -1 {
				return 0, fmt.Errorf("more than one role bit set (%d and %d)", found, i)
			}
			found = i
		}
	}
	if found == -1 {
		return 0, fmt.Errorf("no role bit set")
	}
	return found, nil
}

// ExcludeCircuit forbids exactly the one-hot assignment corresponding to
// g's gates at their current positions.
func (e *ECA57Encoder) ExcludeCircuit(g gate.Circuit) error {
	if len(g.Gates) != e.GateCount {
		return fmt.Errorf("encode: circuit has %d gates, encoder is for %d", len(g.Gates), e.GateCount)
	}
	lits := e.roleLiteralsFor(g, 0)
	e.builder.Exclude(lits)
	return nil
}

// ExcludeSubcircuit forbids seed appearing at every possible shift within
// this encoder's gate count, blocking it as a subsequence regardless of
// surrounding gates.
func (e *ECA57Encoder) ExcludeSubcircuit(seed gate.Circuit) error {
	n := len(seed.Gates)
	if n > e.GateCount {
		return nil
	}
	for shift := 0; shift <= e.GateCount-n; shift++ {
		lits := e.roleLiteralsFor(seed, shift)
		e.builder.Exclude(lits)
	}
	return nil
}

func (e *ECA57Encoder) roleLiteralsFor(c gate.Circuit, shift int) []cnf.Literal {
	lits := make([]cnf.Literal, 0, len(c.Gates)*3)
	for i, g := range c.Gates {
		pos := shift + i
		lits = append(lits, e.t[pos][g.Wires[0]], e.c1[pos][g.Wires[1]], e.c2[pos][g.Wires[2]])
	}
	return lits
}
