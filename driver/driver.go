package driver

import (
	"context"

	"go.uber.org/zap"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/sat"
	"github.com/erigontech/revsynth/store"
	"github.com/erigontech/revsynth/unroll"
)

// Driver is the top-level staggered enumeration orchestrator: it owns the
// frontier, the store, the solver race, and the worker pool, and walks
// every cell in order, logging per-cell outcomes. Grounded on
// original_source/scripts/explore_staggered.py's top-level loop.
type Driver struct {
	Basis     gate.Basis
	Templates *store.TemplateStore
	Witnesses *store.WitnessStore
	Racer     *sat.Racer
	Pool      *WorkerPool
	Log       *zap.SugaredLogger

	SkipWitnesses bool
}

// Explore walks frontier's cells in order, running each to closure. A
// failed or crashed cell does not stop the walk (§4.H: "Failure in one
// cell does not block others").
func (d *Driver) Explore(ctx context.Context, frontier Frontier) ([]CellOutcome, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	runner := &CellRunner{
		Basis:        d.Basis,
		Templates:    d.Templates,
		Racer:        d.Racer,
		Pool:         d.Pool,
		Log:          log,
		UnrollConfig: unroll.Config{Mirror: true, Rotate: true, Permute: true, Swap: true},
	}

	var outcomes []CellOutcome
	for _, cell := range frontier.Cells() {
		select {
		case <-ctx.Done():
			return outcomes, ctx.Err()
		default:
		}

		outcome, err := runner.Run(ctx, cell)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)

		if !d.SkipWitnesses && d.Witnesses != nil && outcome.State != CellFailed {
			if err := d.buildWitnesses(cell); err != nil {
				log.Warnw("witness build failed for cell", "width", cell.Width, "gate_count", cell.GateCount, "error", err)
			}
		}
	}
	return outcomes, nil
}

// buildWitnesses collects every template at cell's dimensions before
// building witnesses for them: BuildFromTemplate opens its own write
// transaction on the same env, and bbolt forbids opening a read-write
// transaction from within an active read-only one on the same goroutine,
// so the read pass must fully finish before any write starts.
func (d *Driver) buildWitnesses(cell Cell) error {
	var records []store.TemplateRecord
	err := d.Templates.IterByDims(cell.Width, uint16(cell.GateCount), func(rec store.TemplateRecord) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, _, err := d.Witnesses.BuildFromTemplate(rec, false); err != nil {
			return err
		}
	}
	return nil
}
