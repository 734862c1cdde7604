// Package sat adapts CNF formulas to concrete SAT backends: an in-process
// pure-Go solver, an external-subprocess solver speaking DIMACS, and a
// racer that runs several backends concurrently and keeps the first
// definitive result. Grounded on original_source/src/sat/solver.py and
// original_source/src/sat/solver_racer.py.
package sat

import (
	"context"
	"errors"
)

// ErrSolverFailure wraps any backend crash, nonzero exit, or unparseable
// output (§7 Kind SolverFailure).
var ErrSolverFailure = errors.New("sat: solver failure")

// Result is the outcome of one solve call: whether the formula is
// satisfiable, and if so the full signed-literal assignment (backend
// independent — the positive subset identifies the chosen one-hots).
type Result struct {
	SAT        bool
	Assignment []int
}

// Solver exposes the single operation every backend must provide.
type Solver interface {
	Name() string
	Solve(ctx context.Context, numVars int, clauses [][]int) (Result, error)
}
