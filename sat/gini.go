package sat

import (
	"context"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"
)

// GiniSolver is the in-process backend: a real pure-Go CDCL solver, used
// the way the operator-framework dependency resolver uses it — build the
// clauses, call Solve, read Value(lit) for every variable.
type GiniSolver struct{}

func (GiniSolver) Name() string { return "gini" }

func (GiniSolver) Solve(ctx context.Context, numVars int, clauses [][]int) (Result, error) {
	g := gini.New()
	for _, clause := range clauses {
		for _, lit := range clause {
			g.Add(z.Dimacs(lit))
		}
		g.Add(0)
	}

	handle := g.GoSolve()
	done := make(chan int, 1)
	go func() { done <- handle.Res() }()

	var outcome int
	select {
	case <-ctx.Done():
		handle.Stop()
		outcome = <-done
	case outcome = <-done:
	}

	switch outcome {
	case 1: // sat
		assignment := make([]int, 0, numVars)
		for v := 1; v <= numVars; v++ {
			lit := z.Var(v).Pos()
			if g.Value(lit) {
				assignment = append(assignment, v)
			} else {
				assignment = append(assignment, -v)
			}
		}
		return Result{SAT: true, Assignment: assignment}, nil
	case -1: // unsat
		return Result{SAT: false}, nil
	default:
		return Result{}, ErrSolverFailure
	}
}
