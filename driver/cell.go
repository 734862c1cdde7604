package driver

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/cnf"
	"github.com/erigontech/revsynth/encode"
	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/sat"
	"github.com/erigontech/revsynth/store"
	"github.com/erigontech/revsynth/unroll"
)

// CellRunner drives one (width, gate_count) cell to closure: create an
// encoder, exclude known templates, solve, insert, unroll, exclude, repeat
// until UNSAT. Grounded on original_source/src/synthesizers/
// eca57_dimgroup_synthesizer.py ECA57DimGroupSynthesizer.
type CellRunner struct {
	Basis     gate.Basis
	Templates *store.TemplateStore
	Racer     *sat.Racer
	Pool      *WorkerPool
	Log       *zap.SugaredLogger

	NoSpectator   bool
	ExactControls int // <=0 disables, ECA57 only

	MinControls, MaxControls int // MCT only; both <=0 means encode.NewMCTEncoder's defaults

	// UnrollConfig drives the sequential unroll path taken when Pool is
	// nil. Ignored when Pool is set, since the pool carries its own Config.
	UnrollConfig unroll.Config
}

// cellEncoder is the subset of ECA57Encoder/MCTEncoder that CellRunner
// needs: build once, exclude seeds, solve, decode, exclude, repeat. Basis-
// agnostic so the same per-cell loop drives either gate family.
type cellEncoder interface {
	Builder() *cnf.Builder
	Decode(assignment []int) (gate.Circuit, error)
	ExcludeCircuit(gate.Circuit) error
}

func (cr *CellRunner) newEncoder(cell Cell) (cellEncoder, error) {
	switch cr.Basis.ID() {
	case gate.BasisMCT:
		return encode.NewMCTEncoder(cell.Width, cell.GateCount, cr.MinControls, cr.MaxControls)
	default:
		return encode.NewECA57Encoder(cell.Width, cell.GateCount, cr.NoSpectator, cr.ExactControls)
	}
}

// CellOutcome summarizes one cell's run.
type CellOutcome struct {
	Cell       Cell
	State      CellState
	Inserted   int // new SAT-origin templates
	Unrolled   int // new UNROLL-origin templates
	Duplicates int
}

// Run executes the per-cell loop of §4.H until the encoder reports UNSAT
// or an unrecoverable error occurs. Failure in this cell never blocks
// others — the caller decides what to do with a Failed outcome.
func (cr *CellRunner) Run(ctx context.Context, cell Cell) (CellOutcome, error) {
	log := cr.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	outcome := CellOutcome{Cell: cell, State: CellOpen}

	enc, err := cr.newEncoder(cell)
	if err != nil {
		return outcome, errors.Wrapf(err, "driver: build encoder for %dx%d", cell.Width, cell.GateCount)
	}

	// Exclude every already-known template at this cell so the solver
	// cannot re-emit a canonical form the store already has.
	err = cr.Templates.IterByDims(cell.Width, uint16(cell.GateCount), func(rec store.TemplateRecord) error {
		gates, err := store.DecodeGates(rec.BasisID, rec.GatesEncoded)
		if err != nil {
			return err
		}
		return enc.ExcludeCircuit(gate.Circuit{Width: cell.Width, Gates: gates})
	})
	if err != nil {
		return outcome, errors.Wrapf(err, "driver: seed exclusions for %dx%d", cell.Width, cell.GateCount)
	}

	for {
		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		default:
		}

		result, err := cr.Racer.Solve(ctx, enc.Builder().NumVars(), enc.Builder().Clauses())
		if err != nil {
			log.Warnw("cell solve failed", "width", cell.Width, "gate_count", cell.GateCount, "error", err)
			outcome.State = CellFailed
			return outcome, nil
		}
		if !result.SAT {
			outcome.State = CellClosed
			log.Infow("cell closed", "width", cell.Width, "gate_count", cell.GateCount,
				"inserted", outcome.Inserted, "unrolled", outcome.Unrolled)
			return outcome, nil
		}

		circuit, err := enc.Decode(result.Assignment)
		if err != nil {
			return outcome, errors.Wrap(err, "driver: decode SAT model")
		}
		log.Infow("cell sat", "width", cell.Width, "gate_count", cell.GateCount)

		record, err := cr.Templates.InsertTemplate(circuit.Gates, cell.Width, store.OriginSAT, 0, 0, nil)
		switch {
		case errors.Is(err, store.ErrDuplicate):
			outcome.Duplicates++
		case err != nil:
			return outcome, errors.Wrap(err, "driver: insert seed template")
		default:
			outcome.Inserted++
			unrolled, err := cr.unrollAndInsert(ctx, record)
			outcome.Unrolled += unrolled
			if err != nil {
				log.Warnw("unroll failed, continuing", "template_id", record.TemplateID, "error", err)
			}
		}

		if err := enc.ExcludeCircuit(circuit); err != nil {
			return outcome, errors.Wrap(err, "driver: exclude decoded circuit")
		}
	}
}

func (cr *CellRunner) unrollAndInsert(ctx context.Context, seed store.TemplateRecord) (int, error) {
	gates, err := store.DecodeGates(seed.BasisID, seed.GatesEncoded)
	if err != nil {
		return 0, err
	}

	if cr.Pool == nil {
		variants, err := unroll.Unroll(cr.Basis, gates, seed.Width, cr.UnrollConfig)
		if err != nil {
			return 0, err
		}
		return cr.insertVariants(seed, variants)
	}

	results, errs := cr.Pool.Run(ctx, []UnrollTask{{Seed: gates, Width: seed.Width}})
	for i, e := range errs {
		if e != nil {
			return 0, fmt.Errorf("driver: unroll task %d: %w", i, e)
		}
	}
	total := 0
	for _, r := range results {
		n, err := cr.insertVariants(seed, r.Variants)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (cr *CellRunner) insertVariants(seed store.TemplateRecord, variants []unroll.Variant) (int, error) {
	fam := seed.FamilyHash
	inserted := 0
	for _, v := range variants {
		if v.Ops == 0 {
			continue // the seed itself, already inserted
		}
		_, err := cr.Templates.InsertTemplate(v.Gates, seed.Width, store.OriginUnroll, seed.TemplateID, uint32(v.Ops), &fam)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
