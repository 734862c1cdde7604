package sat

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Racer starts one Solver per configured backend on the same CNF, accepts
// the first definitive (non-error) result, and cancels the rest. Grounded
// on original_source/src/sat/solver_racer.py's SolverRacer.
type Racer struct {
	Backends []Solver
	Log      *zap.SugaredLogger
}

// NewRacer builds a Racer over backends, logging disagreements and
// failures through log (a nop logger is used if log is nil).
func NewRacer(log *zap.SugaredLogger, backends ...Solver) *Racer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Racer{Backends: backends, Log: log}
}

type raceOutcome struct {
	backend string
	result  Result
	err     error
}

// Solve races every backend and returns the first result that arrives
// without error, cancelling the remaining backends. A result delivered
// after the winner whose SAT verdict differs is only logged; the winner's
// result is returned regardless, and no agreement between backends is
// required.
func (r *Racer) Solve(ctx context.Context, numVars int, clauses [][]int) (Result, error) {
	if len(r.Backends) == 1 {
		return r.Backends[0].Solve(ctx, numVars, clauses)
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceOutcome, len(r.Backends))
	var wg sync.WaitGroup
	for _, backend := range r.Backends {
		wg.Add(1)
		go func(s Solver) {
			defer wg.Done()
			res, err := s.Solve(raceCtx, numVars, clauses)
			select {
			case results <- raceOutcome{backend: s.Name(), result: res, err: err}:
			case <-raceCtx.Done():
			}
		}(backend)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var winner *raceOutcome
	var failures int
	for outcome := range results {
		if outcome.err != nil {
			failures++
			r.Log.Warnw("solver race: backend failed", "backend", outcome.backend, "error", outcome.err)
			if failures == len(r.Backends) {
				return Result{}, ErrSolverFailure
			}
			continue
		}
		if winner == nil {
			o := outcome
			winner = &o
			cancel()
			continue
		}
		if winner.result.SAT != outcome.result.SAT {
			r.Log.Warnw("solver race: backends disagreed", "winner", winner.backend, "loser", outcome.backend)
		}
	}

	if winner == nil {
		return Result{}, ErrSolverFailure
	}
	return winner.result, nil
}
