package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/c2h5oh/datasize"

	"github.com/erigontech/revsynth/driver"
	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/store"
	"github.com/erigontech/revsynth/unroll"
)

func newBuildDBCmd(log *zap.SugaredLogger) *cobra.Command {
	var maxWidth, maxGC int
	var solvers, dbDir, basisName string
	var mapSize string

	cmd := &cobra.Command{
		Use:   "build-db",
		Short: "Enumerate a width/gate-count grid and write templates to a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var size datasize.ByteSize
			if mapSize != "" {
				if err := size.UnmarshalText([]byte(mapSize)); err != nil {
					return err
				}
			}

			basis, err := gate.Lookup(basisName)
			if err != nil {
				return err
			}

			env, err := store.Open(dbDir, store.Config{MapSize: size, Basis: basisName})
			if err != nil {
				return invariantErr(err)
			}
			defer env.Close()

			templates, err := store.NewTemplateStore(env, basis, 4096)
			if err != nil {
				return invariantErr(err)
			}

			racer := resolveSolvers(solvers, log)
			runner := &driver.CellRunner{
				Basis:        basis,
				Templates:    templates,
				Racer:        racer,
				Log:          log,
				UnrollConfig: unroll.Config{Mirror: true, Rotate: true, Permute: true, Swap: true},
			}

			minWidth := uint8(1)
			if basis.ID() == gate.BasisECA57 {
				minWidth = 3
			}
			frontier := driver.Frontier{MinWidth: minWidth, MaxWidth: uint8(maxWidth)}
			for _, cell := range frontier.Cells() {
				if cell.GateCount > maxGC {
					continue
				}
				outcome, err := runner.Run(cmd.Context(), cell)
				if err != nil {
					return invariantErr(err)
				}
				log.Infow("cell done", "width", outcome.Cell.Width, "gate_count", outcome.Cell.GateCount,
					"state", outcome.State.String(), "inserted", outcome.Inserted, "unrolled", outcome.Unrolled)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxWidth, "max-width", 3, "maximum wire count")
	cmd.Flags().IntVar(&maxGC, "max-gc", 6, "maximum gate count")
	cmd.Flags().StringVarP(&dbDir, "output", "o", "", "store directory")
	cmd.Flags().StringVarP(&solvers, "solver", "s", "", "comma-separated solver backends to race")
	cmd.Flags().StringVar(&mapSize, "map-size", "", "bbolt map size, e.g. 10GB")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	cmd.MarkFlagRequired("output")
	return cmd
}
