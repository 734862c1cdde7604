package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/unroll"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	basis := gate.ECA57Basis{}
	pool := NewWorkerPool(basis, unroll.Config{Mirror: true}, 2)

	tasks := []UnrollTask{
		{Seed: []gate.Gate{gate.NewECA57Gate(0, 1, 2), gate.NewECA57Gate(0, 1, 2)}, Width: 3},
		{Seed: []gate.Gate{gate.NewECA57Gate(1, 2, 0), gate.NewECA57Gate(1, 2, 0)}, Width: 3},
	}

	results, errs := pool.Run(context.Background(), tasks)
	require.Len(t, results, 2)
	require.Len(t, errs, 2)
	for i, e := range errs {
		require.NoError(t, e, "task %d", i)
		require.NotEmpty(t, results[i].Variants)
	}
}

func TestNewWorkerPoolDefaultsWorkers(t *testing.T) {
	pool := NewWorkerPool(gate.ECA57Basis{}, unroll.Config{}, 0)
	require.GreaterOrEqual(t, pool.Workers, 1)
}
