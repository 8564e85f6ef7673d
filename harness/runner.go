package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/chanbench/chanbench/scenario"
)

// Runner executes one scenario per freshly spawned worker process, so
// one scenario's allocations can never inflate another's peak-memory
// reading. The worker is this same binary re-invoked with the worker
// subcommand; it reports a single JSON Measurement on stdout.
type Runner struct {
	Exe      string
	BaseArgs []string
	Logger   *slog.Logger
}

// NewRunner creates a Runner. exe is the worker binary (normally the
// running executable) and baseArgs the worker subcommand plus the
// flags needed to rebuild the identical registry in the child.
func NewRunner(exe string, baseArgs []string, logger *slog.Logger) *Runner {
	return &Runner{Exe: exe, BaseArgs: baseArgs, Logger: logger}
}

// WorkerDiedError reports a worker process that terminated without
// sending a Measurement (crash, external kill, OOM kill). It is
// distinct from a scenario failure: the measurement itself is
// unreliable, not just the workload.
type WorkerDiedError struct {
	Section string
	Label   string
	Wait    error
	Stderr  string
}

func (e *WorkerDiedError) Error() string {
	msg := fmt.Sprintf(
		"worker for %s : %s exited without reporting a measurement",
		e.Section, e.Label,
	)

	if e.Wait != nil {
		msg += fmt.Sprintf(" (%v)", e.Wait)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}

	return msg
}

// Run spawns the worker for the entry and blocks, without timeout,
// until the child exits and its Measurement is decoded. The spawn
// overhead is outside the measured span, which the worker scopes
// around the callable alone.
func (r *Runner) Run(
	ctx context.Context,
	entry *scenario.Entry,
) (*scenario.Measurement, error) {
	args := make([]string, 0, len(r.BaseArgs)+2)
	args = append(args, r.BaseArgs...)
	args = append(args, "--scenario", entry.ID())

	cmd := exec.CommandContext(ctx, r.Exe, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Info("starting scenario",
		slog.String("section", entry.Section),
		slog.String("label", entry.Label),
		slog.String("id", entry.ID()),
	)

	waitErr := cmd.Run()

	m, err := parseMeasurement(&stdout)
	if err != nil {
		return nil, &WorkerDiedError{
			Section: entry.Section,
			Label:   entry.Label,
			Wait:    waitErr,
			Stderr:  stderr.String(),
		}
	}

	if waitErr != nil {
		r.Logger.Warn("worker exited abnormally after reporting",
			slog.String("label", entry.Label),
			slog.String("error", waitErr.Error()),
		)
	}

	return m, nil
}

func parseMeasurement(r io.Reader) (*scenario.Measurement, error) {
	var m scenario.Measurement
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode measurement: %w", err)
	}

	return &m, nil
}
