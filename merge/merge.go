// Package merge folds a set of per-job template stores into one target
// store, deduping by canonical hash. Grounded on
// original_source/cluster/merge_jobs.py.
package merge

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"github.com/erigontech/revsynth/driver"
	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/store"
)

// JobReport summarizes one source store's contribution to a merge.
type JobReport struct {
	SourcePath string
	Inserted   int
	Duplicates int
	Err        error
}

// Report is the overall outcome of a merge run.
type Report struct {
	Jobs          []JobReport
	TotalInserted int
	TotalSeen     int
}

// Merge scans every source store's templates_by_dims in id order and
// attempts insertion into target, deduping by canonical hash.
// origin_template_id links are intentionally NOT preserved across merges
// (IDs are local to each store, per §4.I); every inserted record gets a
// fresh origin/family of its own at the target.
func Merge(sources []*store.Env, target *store.TemplateStore, basis gate.Basis, maxWidth uint8, maxGCByWidth map[uint8]int, dryRun bool) (Report, error) {
	gcTable := maxGCByWidth
	if gcTable == nil {
		gcTable = driver.DefaultMaxGCByWidth
	}

	var report Report
	for i, src := range sources {
		jr := JobReport{SourcePath: src.Path()}
		srcTemplates, err := store.NewTemplateStore(src, basis, 0)
		if err != nil {
			jr.Err = errors.Wrapf(err, "merge: wrap source %d", i)
			report.Jobs = append(report.Jobs, jr)
			continue
		}

		for w := uint8(1); w <= maxWidth; w++ {
			ceiling := gcTable[w]
			for gc := 0; gc <= ceiling; gc++ {
				err := srcTemplates.IterByDims(w, uint16(gc), func(rec store.TemplateRecord) error {
					report.TotalSeen++
					if dryRun {
						return nil
					}
					gates, err := store.DecodeGates(rec.BasisID, rec.GatesEncoded)
					if err != nil {
						return err
					}
					_, err = target.InsertTemplate(gates, rec.Width, rec.Origin, 0, rec.UnrollOps, nil)
					switch {
					case errors.Is(err, store.ErrDuplicate):
						jr.Duplicates++
					case err != nil:
						return err
					default:
						jr.Inserted++
					}
					return nil
				})
				if err != nil {
					jr.Err = errors.Wrapf(err, "merge: source %d dims %d/%d", i, w, gc)
				}
			}
		}

		report.TotalInserted += jr.Inserted
		report.Jobs = append(report.Jobs, jr)
	}
	return report, nil
}

// PrintReport renders a tabular summary of report to stdout via
// go-pretty, matching the CLI's benchmark/merge reporting style.
func PrintReport(report Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"source", "inserted", "duplicates", "error"})
	for _, jr := range report.Jobs {
		errStr := ""
		if jr.Err != nil {
			errStr = jr.Err.Error()
		}
		tw.AppendRow(table.Row{jr.SourcePath, jr.Inserted, jr.Duplicates, errStr})
	}
	tw.AppendFooter(table.Row{"total", report.TotalInserted, report.TotalSeen - report.TotalInserted, ""})
	tw.Render()
	fmt.Println()
}
