// Command revsynth enumerates reversible identity circuits and maintains
// the content-addressed template/witness database. Grounded on
// original_source/src/eca57_cli.py, whose argparse subparsers map onto the
// cobra commands registered below.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "revsynth: failed to build logger:", err)
		return 2
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	root := &cobra.Command{
		Use:           "revsynth",
		Short:         "Enumerate and store reversible identity circuit templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSynthCmd(log),
		newCollectionCmd(log),
		newBuildDBCmd(log),
		newUnrollCmd(log),
		newBuildWitnessesCmd(log),
		newExploreCmd(log),
		newMergeCmd(log),
		newBenchmarkCmd(log),
	)

	if err := root.Execute(); err != nil {
		log.Errorw("command failed", "error", err)
		if ec, ok := err.(*exitCodeError); ok {
			return ec.code
		}
		return 1
	}
	return 0
}

// exitCodeError lets a subcommand request the §7 "internal invariant
// violation" exit code (2) instead of the default user/IO error code (1).
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func invariantErr(err error) error {
	return &exitCodeError{code: 2, err: err}
}
