package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/merge"
	"github.com/erigontech/revsynth/store"
)

func newMergeCmd(log *zap.SugaredLogger) *cobra.Command {
	var jobsDir, outputDir, basisName string
	var maxWidth int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Fold per-job template stores into one target store",
		RunE: func(cmd *cobra.Command, args []string) error {
			basis, err := gate.Lookup(basisName)
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(jobsDir)
			if err != nil {
				return invariantErr(err)
			}

			var sources []*store.Env
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				src, err := store.Open(filepath.Join(jobsDir, e.Name()), store.Config{Basis: basisName, ReadOnly: true})
				if err != nil {
					log.Warnw("skipping unopenable job store", "path", e.Name(), "error", err)
					continue
				}
				defer src.Close()
				sources = append(sources, src)
			}

			target, err := store.Open(outputDir, store.Config{Basis: basisName})
			if err != nil {
				return invariantErr(err)
			}
			defer target.Close()

			targetTemplates, err := store.NewTemplateStore(target, basis, 4096)
			if err != nil {
				return invariantErr(err)
			}

			report, err := merge.Merge(sources, targetTemplates, basis, uint8(maxWidth), nil, dryRun)
			if err != nil {
				return invariantErr(err)
			}
			merge.PrintReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobsDir, "jobs-dir", "", "directory containing one subdirectory per job store")
	cmd.Flags().StringVar(&outputDir, "output", "", "target store directory")
	cmd.Flags().IntVar(&maxWidth, "max-width", 9, "maximum wire count to scan across all sources")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan and report without writing to the target store")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	cmd.MarkFlagRequired("jobs-dir")
	cmd.MarkFlagRequired("output")
	return cmd
}
