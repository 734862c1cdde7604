package main

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/erigontech/revsynth/sat"
)

// resolveSolvers turns a comma-separated "-s" flag value (falling back to
// the SOLVER environment hint, then to "gini") into a Racer backend list.
// A name other than "gini" is treated as a path to an external DIMACS-in/
// DIMACS-out solver binary, matching §6's "SOLVERS is comma-separated for
// racing".
func resolveSolvers(flagValue string, log *zap.SugaredLogger) *sat.Racer {
	spec := flagValue
	if spec == "" {
		spec = os.Getenv("SOLVER")
	}
	if spec == "" {
		spec = "gini"
	}

	var backends []sat.Solver
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if name == "gini" {
			backends = append(backends, sat.GiniSolver{})
			continue
		}
		backends = append(backends, sat.NewExternalSolver(name, name))
	}
	if len(backends) == 0 {
		backends = append(backends, sat.GiniSolver{})
	}
	return sat.NewRacer(log, backends...)
}
