package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/collection"
	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/sat"
)

func newSynthCmd(log *zap.SugaredLogger) *cobra.Command {
	var solvers, outPath, basisName string

	cmd := &cobra.Command{
		Use:   "synth W GC",
		Short: "Enumerate all identity circuits for one (width, gate_count) cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, gc, err := parseDims(args[0], args[1])
			if err != nil {
				return err
			}

			basis, err := gate.Lookup(basisName)
			if err != nil {
				return err
			}

			racer := resolveSolvers(solvers, log)
			circuits, err := synthesizeCell(cmd.Context(), racer, basisName, width, gc)
			if err != nil {
				return invariantErr(err)
			}
			log.Infow("synth complete", "width", width, "gate_count", gc, "found", len(circuits))

			coll := collection.New(basis, width, gc)
			group := coll.Group(width, gc)
			for _, c := range circuits {
				if err := group.Append(c); err != nil {
					return invariantErr(err)
				}
			}
			return writeCollection(coll, outPath)
		},
	}

	cmd.Flags().StringVarP(&solvers, "solver", "s", "", "comma-separated solver backends to race")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (compact text; .json suffix writes JSON)")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	return cmd
}

// synthesizeCell runs the exclude-solve-decode loop of §4.H for a single
// cell with no store backing it, collecting every identity circuit found
// until the encoder reports UNSAT.
func synthesizeCell(ctx context.Context, racer *sat.Racer, basisName string, width uint8, gc int) ([]gate.Circuit, error) {
	enc, err := newCellEncoder(basisName, width, gc)
	if err != nil {
		return nil, err
	}

	var found []gate.Circuit
	for {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		result, err := racer.Solve(ctx, enc.Builder().NumVars(), enc.Builder().Clauses())
		if err != nil {
			return found, err
		}
		if !result.SAT {
			return found, nil
		}

		circuit, err := enc.Decode(result.Assignment)
		if err != nil {
			return found, err
		}
		found = append(found, circuit)

		if err := enc.ExcludeCircuit(circuit); err != nil {
			return found, err
		}
	}
}

func parseDims(wArg, gcArg string) (uint8, int, error) {
	var width int
	var gc int
	if _, err := fmt.Sscanf(wArg, "%d", &width); err != nil {
		return 0, 0, fmt.Errorf("revsynth: bad width %q: %w", wArg, err)
	}
	if _, err := fmt.Sscanf(gcArg, "%d", &gc); err != nil {
		return 0, 0, fmt.Errorf("revsynth: bad gate count %q: %w", gcArg, err)
	}
	if width <= 0 || width > 255 {
		return 0, 0, fmt.Errorf("revsynth: width %d out of range", width)
	}
	return uint8(width), gc, nil
}

func writeCollection(coll *collection.Collection, outPath string) error {
	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if isJSONPath(outPath) {
			return coll.WriteJSON(f)
		}
		return coll.WriteCompact(f)
	}
	return coll.WriteCompact(w)
}

func isJSONPath(path string) bool {
	return len(path) >= 5 && path[len(path)-5:] == ".json"
}
