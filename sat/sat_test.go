package sat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSolver struct {
	name   string
	result Result
	err    error
}

func (f fakeSolver) Name() string { return f.name }
func (f fakeSolver) Solve(ctx context.Context, numVars int, clauses [][]int) (Result, error) {
	return f.result, f.err
}

func TestRacerSingleBackend(t *testing.T) {
	r := NewRacer(nil, fakeSolver{name: "only", result: Result{SAT: true, Assignment: []int{1, -2}}})
	res, err := r.Solve(context.Background(), 2, nil)
	require.NoError(t, err)
	require.True(t, res.SAT)
}

func TestRacerAllFail(t *testing.T) {
	r := NewRacer(nil,
		fakeSolver{name: "a", err: ErrSolverFailure},
		fakeSolver{name: "b", err: ErrSolverFailure},
	)
	_, err := r.Solve(context.Background(), 2, nil)
	require.ErrorIs(t, err, ErrSolverFailure)
}

func TestRacerFirstWins(t *testing.T) {
	r := NewRacer(nil,
		fakeSolver{name: "a", result: Result{SAT: true, Assignment: []int{1}}},
		fakeSolver{name: "b", err: ErrSolverFailure},
	)
	res, err := r.Solve(context.Background(), 1, nil)
	require.NoError(t, err)
	require.True(t, res.SAT)
}
