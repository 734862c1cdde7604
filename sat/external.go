package sat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ExternalSolver spawns a subprocess, pipes DIMACS CNF to its stdin, and
// parses the standard "s SATISFIABLE|UNSATISFIABLE" / "v ..." output
// format. Grounded on original_source/src/sat/solver.py's external-process
// path.
type ExternalSolver struct {
	name string
	path string
	args []string
}

// NewExternalSolver builds a backend that shells out to path with args,
// identified as name for logging and race-result reporting.
func NewExternalSolver(name, path string, args ...string) *ExternalSolver {
	return &ExternalSolver{name: name, path: path, args: args}
}

func (e *ExternalSolver) Name() string { return e.name }

func (e *ExternalSolver) Solve(ctx context.Context, numVars int, clauses [][]int) (Result, error) {
	cmd := exec.CommandContext(ctx, e.path, e.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Result{}, errors.Wrapf(err, "sat: %s: open stdin", e.name)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return Result{}, errors.Wrapf(err, "sat: %s: start", e.name)
	}

	// Background writer feeds stdin while the main goroutine (via cmd.Wait)
	// drains stdout, avoiding a pipe-buffer deadlock on large CNFs.
	writeErr := make(chan error, 1)
	go func() {
		defer stdin.Close()
		w := bufio.NewWriterSize(stdin, 1<<20)
		fmt.Fprintf(w, "p cnf %d %d\n", numVars, len(clauses))
		for _, clause := range clauses {
			for _, lit := range clause {
				fmt.Fprintf(w, "%d ", lit)
			}
			w.WriteString("0\n")
		}
		writeErr <- w.Flush()
	}()

	waitErr := cmd.Wait()
	if err := <-writeErr; err != nil && waitErr == nil {
		return Result{}, errors.Wrapf(err, "sat: %s: write stdin", e.name)
	}

	sat, assignment, parseErr := parseDIMACSOutput(stdout.String())
	if parseErr != nil {
		return Result{}, errors.Wrapf(ErrSolverFailure, "%s: %v", e.name, parseErr)
	}
	if waitErr != nil && sat == nil {
		return Result{}, errors.Wrapf(ErrSolverFailure, "%s: exited: %v", e.name, waitErr)
	}
	if sat == nil {
		return Result{}, errors.Wrapf(ErrSolverFailure, "%s: no s-line in output", e.name)
	}
	return Result{SAT: *sat, Assignment: assignment}, nil
}

func parseDIMACSOutput(out string) (sat *bool, assignment []int, err error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "s SATISFIABLE"):
			t := true
			sat = &t
		case strings.HasPrefix(line, "s UNSATISFIABLE"):
			f := false
			sat = &f
		case strings.HasPrefix(line, "v "):
			for _, tok := range strings.Fields(line[2:]) {
				n, convErr := strconv.Atoi(tok)
				if convErr != nil {
					return sat, assignment, fmt.Errorf("unparseable literal %q: %w", tok, convErr)
				}
				if n != 0 {
					assignment = append(assignment, n)
				}
			}
		}
	}
	return sat, assignment, nil
}
