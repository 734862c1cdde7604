package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/driver"
	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/store"
	"github.com/erigontech/revsynth/unroll"
)

func newExploreCmd(log *zap.SugaredLogger) *cobra.Command {
	var dbDir, solvers, basisName string
	var minWidth, maxWidth, singleGC, workers int
	var skipWitnesses, noParallel bool

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Run the staggered enumeration driver across a width/gate-count frontier",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyEnvOverrides(cmd.Flags().Changed, &minWidth, &maxWidth, &singleGC, &workers, &skipWitnesses, &solvers)

			basis, err := gate.Lookup(basisName)
			if err != nil {
				return err
			}

			env, err := store.Open(dbDir, store.Config{Basis: basisName})
			if err != nil {
				return invariantErr(err)
			}
			defer env.Close()

			templates, err := store.NewTemplateStore(env, basis, 4096)
			if err != nil {
				return invariantErr(err)
			}
			witnesses := store.NewWitnessStore(env, basis)

			racer := resolveSolvers(solvers, log)

			var pool *driver.WorkerPool
			if !noParallel {
				pool = driver.NewWorkerPool(basis, unroll.Config{Mirror: true, Rotate: true, Permute: true, Swap: true}, workers)
			}

			d := &driver.Driver{
				Basis:         basis,
				Templates:     templates,
				Witnesses:     witnesses,
				Racer:         racer,
				Pool:          pool,
				Log:           log,
				SkipWitnesses: skipWitnesses,
			}

			frontier := driver.Frontier{MinWidth: uint8(minWidth), MaxWidth: uint8(maxWidth), SingleGC: singleGC}
			outcomes, err := d.Explore(cmd.Context(), frontier)
			if err != nil {
				return invariantErr(err)
			}
			for _, o := range outcomes {
				log.Infow("cell outcome", "width", o.Cell.Width, "gate_count", o.Cell.GateCount,
					"state", o.State.String(), "inserted", o.Inserted, "unrolled", o.Unrolled, "duplicates", o.Duplicates)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbDir, "db", "", "store directory")
	cmd.Flags().IntVar(&minWidth, "min-width", 3, "minimum wire count")
	cmd.Flags().IntVar(&maxWidth, "max-width", 6, "maximum wire count")
	cmd.Flags().IntVar(&singleGC, "single-gc", 0, "restrict every width to this exact gate count (cluster-job partitioning)")
	cmd.Flags().StringVarP(&solvers, "solver", "s", "", "comma-separated solver backends to race")
	cmd.Flags().BoolVar(&skipWitnesses, "skip-witnesses", false, "do not build witnesses after each cell")
	cmd.Flags().IntVar(&workers, "workers", 0, "unroll worker pool size (0 = runtime.NumCPU()-1)")
	cmd.Flags().BoolVar(&noParallel, "no-parallel", false, "run unroll sequentially, no worker pool")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	cmd.MarkFlagRequired("db")
	return cmd
}

// applyEnvOverrides reads the cluster environment hints documented in §6
// ("the driver reads standard cluster environment hints ... as optional
// overrides for CLI defaults") when the operator didn't pass an explicit
// flag value.
func applyEnvOverrides(changed func(string) bool, minWidth, maxWidth, singleGC, workers *int, skipWitnesses *bool, solvers *string) {
	if v := os.Getenv("WIDTH"); v != "" && !changed("max-width") {
		if n, err := strconv.Atoi(v); err == nil {
			*maxWidth = n
		}
	}
	if v := os.Getenv("GC"); v != "" && !changed("single-gc") {
		if n, err := strconv.Atoi(v); err == nil {
			*singleGC = n
		}
	}
	if v := os.Getenv("SOLVER"); v != "" && *solvers == "" {
		*solvers = v
	}
	if v := os.Getenv("WORKERS"); v != "" && !changed("workers") {
		if n, err := strconv.Atoi(v); err == nil {
			*workers = n
		}
	}
	if v := os.Getenv("SKIP_WITNESSES"); v != "" && !changed("skip-witnesses") {
		*skipWitnesses = v == "1" || v == "true"
	}
}
