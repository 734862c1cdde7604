package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/driver"
	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/store"
)

func newBuildWitnessesCmd(log *zap.SugaredLogger) *cobra.Command {
	var dbDir, basisName string
	var maxWidth, maxGC int
	var distill bool

	cmd := &cobra.Command{
		Use:   "build-witnesses",
		Short: "Populate witness records and the k-gram prefilter from existing templates",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			frontier := driver.Frontier{MinWidth: 1, MaxWidth: uint8(maxWidth)}
			built := 0
			for _, cell := range frontier.Cells() {
				if cell.GateCount > maxGC {
					continue
				}
				// Collect first: BuildFromTemplate opens its own write
				// transaction on the same store, and bbolt forbids nesting
				// a read-write transaction inside an open read-only one on
				// the same goroutine.
				var records []store.TemplateRecord
				err := templates.IterByDims(cell.Width, uint16(cell.GateCount), func(rec store.TemplateRecord) error {
					records = append(records, rec)
					return nil
				})
				if err != nil {
					return invariantErr(err)
				}
				for _, rec := range records {
					_, isNew, err := witnesses.BuildFromTemplate(rec, distill)
					if err != nil {
						return invariantErr(err)
					}
					if isNew {
						built++
					}
				}
			}
			log.Infow("build-witnesses complete", "built", built, "distill", distill)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbDir, "db", "", "store directory")
	cmd.Flags().IntVar(&maxWidth, "max-width", 3, "maximum wire count")
	cmd.Flags().IntVar(&maxGC, "max-gc", 6, "maximum gate count")
	cmd.Flags().BoolVar(&distill, "distill", false, "try to shrink witnesses via subsumption before storing")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	cmd.MarkFlagRequired("db")
	return cmd
}
