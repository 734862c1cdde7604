package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/unroll"
)

// UnrollTask is one stateless unit of work submitted to the worker pool:
// pure data in, pure data out, no store or encoder handle — workers never
// touch the store or the CNF builder (§5 scheduling model).
type UnrollTask struct {
	Seed  []gate.Gate
	Width uint8
}

// UnrollResult pairs a task's variants with the seed it came from, so the
// caller can attribute origin_template_id / family_hash correctly once
// results are collected back in the single-threaded driver.
type UnrollResult struct {
	Seed     []gate.Gate
	Variants []unroll.Variant
}

// WorkerPool fans UnrollTasks out across up to Workers goroutines via
// errgroup, the Go-idiomatic analog of the Python original's
// multiprocessing pool: inputs/outputs are pure values, so a goroutine
// pool upholds the same "workers hold no shared state" contract without
// needing OS-process isolation.
type WorkerPool struct {
	Basis   gate.Basis
	Config  unroll.Config
	Workers int
}

// NewWorkerPool defaults Workers to runtime.NumCPU()-1 (at least 1), per
// §5's "Default W = n_cpus − 1".
func NewWorkerPool(basis gate.Basis, cfg unroll.Config, workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	return &WorkerPool{Basis: basis, Config: cfg, Workers: workers}
}

// Run unrolls every task concurrently (bounded by Workers) and returns one
// UnrollResult per task, in the same order as tasks. A single task's
// failure (e.g. OOM in a pathological swap-BFS) is reported as an error
// without aborting the other tasks' results; per §7 ResourceExhausted
// policy, the caller logs and moves on to the next seed.
func (p *WorkerPool) Run(ctx context.Context, tasks []UnrollTask) ([]UnrollResult, []error) {
	results := make([]UnrollResult, len(tasks))
	errs := make([]error, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			select {
			case <-gctx.Done():
				errs[i] = gctx.Err()
				return nil
			default:
			}
			variants, err := unroll.Unroll(p.Basis, task.Seed, task.Width, p.Config)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = UnrollResult{Seed: task.Seed, Variants: variants}
			return nil
		})
	}
	_ = g.Wait() // errors are collected per-task in errs, never aborts siblings

	return results, errs
}
