package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/store"
	"github.com/erigontech/revsynth/unroll"
)

func newUnrollCmd(log *zap.SugaredLogger) *cobra.Command {
	var dbDir, seedDims, basisName string
	var dfsBudget int

	cmd := &cobra.Command{
		Use:   "unroll",
		Short: "Expand an existing cell's seed templates into their full equivalence classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			width, gc, err := parseWxGC(seedDims)
			if err != nil {
				return err
			}

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

			cfg := unroll.Config{Mirror: true, Rotate: true, Permute: true, Swap: true, SwapBudget: dfsBudget}

			// Collect the seed records before unrolling: InsertTemplate opens
			// its own write transaction on the same store, and bbolt forbids
			// nesting a read-write transaction inside an open read-only one
			// on the same goroutine, so the read pass must finish first.
			var records []store.TemplateRecord
			err = templates.IterByDims(width, uint16(gc), func(rec store.TemplateRecord) error {
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return invariantErr(err)
			}

			inserted := 0
			for _, rec := range records {
				gates, err := store.DecodeGates(rec.BasisID, rec.GatesEncoded)
				if err != nil {
					return invariantErr(err)
				}
				variants, err := unroll.Unroll(basis, gates, width, cfg)
				if err != nil {
					return invariantErr(err)
				}
				fam := rec.FamilyHash
				for _, v := range variants {
					if v.Ops == 0 {
						continue
					}
					_, err := templates.InsertTemplate(v.Gates, width, store.OriginUnroll, rec.TemplateID, uint32(v.Ops), &fam)
					if err != nil && err != store.ErrDuplicate {
						return invariantErr(err)
					}
					if err == nil {
						inserted++
					}
				}
			}
			log.Infow("unroll complete", "width", width, "gate_count", gc, "inserted", inserted)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbDir, "db", "", "store directory")
	cmd.Flags().StringVar(&seedDims, "seed-dims", "", "WxGC, e.g. 3x4")
	cmd.Flags().IntVar(&dfsBudget, "dfs-budget", 0, "commuting-swap BFS node budget (0 = default)")
	cmd.Flags().StringVarP(&basisName, "basis", "b", "eca57", "gate basis: eca57 or mct")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("seed-dims")
	return cmd
}

func parseWxGC(s string) (uint8, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("revsynth: bad seed-dims %q, want WxGC", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("revsynth: bad width in %q: %w", s, err)
	}
	gc, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("revsynth: bad gate count in %q: %w", s, err)
	}
	return uint8(w), gc, nil
}
