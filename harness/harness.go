// Package harness executes benchmark scenarios in isolated worker
// processes and drives the run: one scenario, one process, one
// measurement, strictly in registry order.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chanbench/chanbench/report"
	"github.com/chanbench/chanbench/scenario"
)

// ScenarioRunner runs one registry entry to completion and returns its
// measurement. A returned error means the worker died without
// reporting, not that the scenario failed.
type ScenarioRunner interface {
	Run(ctx context.Context, entry *scenario.Entry) (*scenario.Measurement, error)
}

// Driver iterates the registry sequentially, feeding one row per
// executed entry to the report builder. Scenario failures and worker
// deaths are contained to their own row and never stop the run.
type Driver struct {
	Runner  ScenarioRunner
	Builder *report.Builder
	Logger  *slog.Logger
}

// NewDriver creates a Driver.
func NewDriver(
	runner ScenarioRunner,
	builder *report.Builder,
	logger *slog.Logger,
) *Driver {
	return &Driver{Runner: runner, Builder: builder, Logger: logger}
}

// Run executes every registry entry in order and returns the collected
// error traces, one per failed entry. Execution is strictly sequential;
// concurrent scenarios would corrupt each other's peak-memory readings.
func (d *Driver) Run(ctx context.Context, reg *scenario.Registry) []string {
	var traces []string

	for _, secDef := range reg.Sections() {
		sec := d.Builder.BeginSection(secDef.Title)

		for _, entry := range secDef.Entries {
			m, err := d.Runner.Run(ctx, entry)
			if err != nil {
				// The worker died without reporting: the row still
				// appears, but the diagnostic is worded distinctly
				// from a cleanly caught scenario failure.
				sec.AppendRow(entry.Label, scenario.Measurement{})
				traces = append(traces, err.Error())

				d.Logger.Error("worker died",
					slog.String("section", entry.Section),
					slog.String("label", entry.Label),
				)

				continue
			}

			sec.AppendRow(entry.Label, *m)

			if !m.Success {
				traces = append(traces, formatTrace(entry, m))

				d.Logger.Warn("scenario failed",
					slog.String("section", entry.Section),
					slog.String("label", entry.Label),
					slog.String("error", m.ErrorMessage),
				)
			} else {
				d.Logger.Info("scenario finished",
					slog.String("label", entry.Label),
					slog.Int64("elapsed_ms", m.DurationMs),
					slog.Int64("peak_mb", m.PeakMemoryMB),
				)
			}
		}

		sec.End()
	}

	return traces
}

func formatTrace(entry *scenario.Entry, m *scenario.Measurement) string {
	return fmt.Sprintf("%s : %s\n%s\n%s\n%s",
		entry.Section,
		entry.Label,
		m.ErrorType,
		m.ErrorMessage,
		m.ErrorTrace,
	)
}

// Candidate identifies one compared implementation for the report
// filename.
type Candidate struct {
	Name    string
	Version string
}

// ReportFilename derives the persisted report name from the host
// architecture and the compared candidate versions, e.g.
// "x64_gob_1.0.0_json_1.0.0.rst".
func ReportFilename(candidates []Candidate, format report.Format) string {
	arch := "x64"
	if strconv.IntSize == 32 {
		arch = "x86"
	}

	parts := []string{arch}
	for _, c := range candidates {
		parts = append(parts, c.Name, c.Version)
	}

	return strings.Join(parts, "_") + "." + string(format)
}

// Cleanup removes scratch artifacts left behind by scenarios. A file
// that is already absent counts as success, so the cleanup is
// idempotent; any other failure is logged and swallowed.
func Cleanup(logger *slog.Logger, paths ...string) {
	for _, path := range paths {
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}

		logger.Warn("cleanup failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
