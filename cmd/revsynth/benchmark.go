package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/sat"
)

// defaultBenchmarkSolvers is the fixed backend set timed by `benchmark`,
// grounded on
// original_source/src/sat/dimgroup_synthesizer.py:benchmark_solvers trying
// every configured backend. The command has no -s flag; this set is
// always used, and its backends run one after another, not concurrently.
var defaultBenchmarkSolvers = []sat.Solver{sat.GiniSolver{}}

func newBenchmarkCmd(log *zap.SugaredLogger) *cobra.Command {
	var width, gc int
	var basisName string

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Time each configured solver backend in turn on one cell and print timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := defaultBenchmarkSolvers

			enc, err := newCellEncoder(basisName, uint8(width), gc)
			if err != nil {
				return err
			}
			numVars := enc.Builder().NumVars()
			clauses := enc.Builder().Clauses()

			type timing struct {
				name     string
				duration time.Duration
				sat      bool
				err      error
			}
			var timings []timing
			for _, backend := range backends {
				start := time.Now()
				result, err := backend.Solve(cmd.Context(), numVars, clauses)
				timings = append(timings, timing{name: backend.Name(), duration: time.Since(start), sat: result.SAT, err: err})
			}
			sort.Slice(timings, func(i, j int) bool { return timings[i].duration < timings[j].duration })

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"solver", "duration", "sat", "error"})
			for _, t := range timings {
				errStr := ""
				if t.err != nil {
					errStr = t.err.Error()
				}
				tw.AppendRow(table.Row{t.name, t.duration, t.sat, errStr})
			}
			tw.Render()

			if len(timings) > 0 && timings[0].err == nil {
				fmt.Printf("recommended solver: %s (%s)\n", timings[0].name, timings[0].duration)
			}
			log.Infow("benchmark complete", "width", width, "gate_count", gc, "backends", len(backends))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 3, "wire count for the benchmarked cell")
	cmd.Flags().IntVar(&gc, "gc", 6, "gate count for the benchmarked cell")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	return cmd
}
