package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/collection"
	"github.com/erigontech/revsynth/driver"
	"github.com/erigontech/revsynth/gate"
)

func newCollectionCmd(log *zap.SugaredLogger) *cobra.Command {
	var solvers, outPath, basisName string

	cmd := &cobra.Command{
		Use:   "collection MAX_W MAX_GC",
		Short: "Enumerate the entire max_gc_by_width-bounded grid with no store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxWidth, maxGC, err := parseDims(args[0], args[1])
			if err != nil {
				return err
			}

			basis, err := gate.Lookup(basisName)
			if err != nil {
				return err
			}

			racer := resolveSolvers(solvers, log)
			coll := collection.New(basis, maxWidth, maxGC)

			minWidth := uint8(1)
			if basis.ID() == gate.BasisECA57 {
				minWidth = 3
			}
			frontier := driver.Frontier{MinWidth: minWidth, MaxWidth: maxWidth}
			for _, cell := range frontier.Cells() {
				if cell.GateCount > maxGC {
					continue
				}
				circuits, err := synthesizeCell(cmd.Context(), racer, basisName, cell.Width, cell.GateCount)
				if err != nil {
					return invariantErr(err)
				}
				group := coll.Group(cell.Width, cell.GateCount)
				for _, c := range circuits {
					if err := group.Append(c); err != nil {
						return invariantErr(err)
					}
				}
				log.Infow("cell enumerated", "width", cell.Width, "gate_count", cell.GateCount, "found", len(circuits))
			}

			fmt.Fprintln(cmd.OutOrStdout(), "enumeration complete")
			return writeCollection(coll, outPath)
		},
	}

	cmd.Flags().StringVarP(&solvers, "solver", "s", "", "comma-separated solver backends to race")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (compact text; .json suffix writes JSON)")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	return cmd
}
