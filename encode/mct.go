package encode

import (
	"fmt"

	"github.com/erigontech/revsynth/cnf"
	"github.com/erigontech/revsynth/gate"
)

// MCTEncoder is the MCT analog of ECA57Encoder: each gate position still
// picks a one-hot target wire, but instead of two one-hot control roles it
// has a free control-membership bit per non-target wire (a gate's control
// set can have any size), matching spec.md §4.E's "controls-bitmask per
// gate position" note.
type MCTEncoder struct {
	Width     uint8
	GateCount int

	builder *cnf.Builder

	// t[g][w]: one-hot target-role literal.
	t [][]cnf.Literal
	// ctl[g][w]: membership bit, wire w is a control of gate g. Forced
	// false when w == target via the structural nand below.
	ctl [][]cnf.Literal

	// d[i][g][w]: data bit on wire w after gate g, for input word i.
	d [][][]cnf.Literal

	minControls, maxControls int
}

// NewMCTEncoder allocates all structural and data-flow variables and
// clauses for one identity cell, restricting each gate's control-set size
// to [minControls, maxControls] (both inclusive; maxControls <= 0 means
// width-1, i.e. unrestricted).
func NewMCTEncoder(width uint8, gateCount, minControls, maxControls int) (*MCTEncoder, error) {
	if width < 1 {
		return nil, fmt.Errorf("encode: mct requires width >= 1, got %d", width)
	}
	if maxControls <= 0 || maxControls > int(width)-1 {
		maxControls = int(width) - 1
	}
	if minControls < 1 {
		minControls = 1
	}

	e := &MCTEncoder{
		Width:       width,
		GateCount:   gateCount,
		builder:     cnf.NewBuilder(),
		minControls: minControls,
		maxControls: maxControls,
	}
	if err := e.buildStructural(); err != nil {
		return nil, err
	}
	if err := e.buildDataFlow(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *MCTEncoder) buildStructural() error {
	w := int(e.Width)
	e.t = make([][]cnf.Literal, e.GateCount)
	e.ctl = make([][]cnf.Literal, e.GateCount)

	for g := 0; g < e.GateCount; g++ {
		e.t[g] = make([]cnf.Literal, w)
		e.ctl[g] = make([]cnf.Literal, w)
		for wi := 0; wi < w; wi++ {
			var err error
			if e.t[g][wi], err = e.builder.ReserveName(fmt.Sprintf("t_%d_%d", g, wi), false); err != nil {
				return err
			}
			if e.ctl[g][wi], err = e.builder.ReserveName(fmt.Sprintf("ctl_%d_%d", g, wi), false); err != nil {
				return err
			}
		}
		e.builder.Exactly(e.t[g], 1)
		for wi := 0; wi < w; wi++ {
			e.builder.Nand(e.t[g][wi], e.ctl[g][wi])
		}
		e.builder.AtLeast(e.ctl[g], e.minControls)
		e.builder.AtMost(e.ctl[g], e.maxControls)
	}
	return nil
}

func (e *MCTEncoder) buildDataFlow() error {
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
		for wi := 0; wi < w; wi++ {
			val := (i>>wi)&1 == 1
			e.builder.SetLiteral(withValue(e.d[i][0][wi], val))
		}

		for g := 0; g < e.GateCount; g++ {
			// active[w] = ctl[g][w] implies wire w must be 1 for the
			// AND-of-controls condition; model it with one auxiliary per
			// wire (true iff the wire is not a control, or it is a control
			// and its data bit is set) and AND them all together.
			ok := make([]cnf.Literal, w)
			for wi := 0; wi < w; wi++ {
				okLit, err := e.reserveInternal(fmt.Sprintf("Ok_%d_%d_%d", i, g, wi))
				if err != nil {
					return err
				}
				// ok <-> (NOT ctl) OR d
				e.builder.EqualsOr(okLit, []cnf.Literal{e.ctl[g][wi].Neg(), e.d[i][g][wi]})
				ok[wi] = okLit
			}
			allOk, err := e.reserveInternal(fmt.Sprintf("AllOk_%d_%d", i, g))
			if err != nil {
				return err
			}
			e.builder.EqualsAnd(allOk, ok)

			for wi := 0; wi < w; wi++ {
				sw, err := e.reserveInternal(fmt.Sprintf("Switch_%d_%d_%d", i, g, wi))
				if err != nil {
					return err
				}
				e.builder.EqualsAnd(sw, []cnf.Literal{allOk, e.t[g][wi]})

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

		for wi := 0; wi < w; wi++ {
			val := (i>>wi)&1 == 1
			e.builder.SetLiteral(withValue(e.d[i][e.GateCount][wi], val))
		}
	}
	return nil
}

func (e *MCTEncoder) reserveInternal(name string) (cnf.Literal, error) {
	return e.builder.ReserveName(name, true)
}

func (e *MCTEncoder) Builder() *cnf.Builder { return e.builder }

// Decode reconstructs the concrete (target, controls...) gate sequence
// from a satisfying assignment.
func (e *MCTEncoder) Decode(assignment []int) (gate.Circuit, error) {
	model := e.builder.Model(assignment)
	gates := make([]gate.Gate, e.GateCount)
	w := int(e.Width)
	for g := 0; g < e.GateCount; g++ {
		target, err := onlyTrue(model, e.t[g])
		if err != nil {
			return gate.Circuit{}, fmt.Errorf("encode: gate %d target: %w", g, err)
		}
		var controls []gate.Wire
		for wi := 0; wi < w; wi++ {
			if wi != target && model[e.ctl[g][wi].Name()] {
				controls = append(controls, gate.Wire(wi))
			}
		}
		gates[g] = gate.NewMCTGate(gate.Wire(target), controls)
	}
	return gate.Circuit{Width: e.Width, Gates: gates}, nil
}

// ExcludeCircuit forbids exactly the role assignment corresponding to g's
// gates at their current positions.
func (e *MCTEncoder) ExcludeCircuit(g gate.Circuit) error {
	if len(g.Gates) != e.GateCount {
		return fmt.Errorf("encode: circuit has %d gates, encoder is for %d", len(g.Gates), e.GateCount)
	}
	lits, err := e.roleLiteralsFor(g, 0)
	if err != nil {
		return err
	}
	e.builder.Exclude(lits)
	return nil
}

// ExcludeSubcircuit forbids seed appearing at every possible shift within
// this encoder's gate count.
func (e *MCTEncoder) ExcludeSubcircuit(seed gate.Circuit) error {
	n := len(seed.Gates)
	if n > e.GateCount {
		return nil
	}
	for shift := 0; shift <= e.GateCount-n; shift++ {
		lits, err := e.roleLiteralsFor(seed, shift)
		if err != nil {
			return err
		}
		e.builder.Exclude(lits)
	}
	return nil
}

func (e *MCTEncoder) roleLiteralsFor(c gate.Circuit, shift int) ([]cnf.Literal, error) {
	w := int(e.Width)
	var lits []cnf.Literal
	for i, g := range c.Gates {
		pos := shift + i
		target := g.Wires[0]
		controls := map[gate.Wire]bool{}
		for _, ctl := range g.Wires[1:] {
			controls[ctl] = true
		}
		lits = append(lits, e.t[pos][target])
		for wi := 0; wi < w; wi++ {
			if gate.Wire(wi) == target {
				continue
			}
			if controls[gate.Wire(wi)] {
				lits = append(lits, e.ctl[pos][wi])
			} else {
				lits = append(lits, e.ctl[pos][wi].Neg())
			}
		}
	}
	return lits, nil
}
