// Package main provides the CLI entry point for chanbench, a
// process-isolated benchmark harness comparing channel-recording
// container codecs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/chanbench/chanbench/harness"
	"github.com/chanbench/chanbench/report"
	"github.com/chanbench/chanbench/workload"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "chanbench",
		Short: "Benchmark channel-recording codecs in isolated processes",
		Long: `Chanbench times a fixed catalogue of scenarios (open, save, read all
channels, convert, merge) against the candidate container codecs. Each
scenario runs in its own worker process so peak-memory readings never
contaminate each other, and the results are rendered as a comparison
table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newExecCmd())

	return root
}

type runConfig struct {
	channels   int
	samples    int
	seed       int64
	path       string
	format     string
	textOutput bool
}

func workloadFlags(cmd *cobra.Command, cfg *runConfig) {
	flags := cmd.Flags()
	flags.IntVar(&cfg.channels, "channels", 200,
		"Number of channels per synthetic recording")
	flags.IntVar(&cfg.samples, "samples", 5000,
		"Number of samples per channel")
	flags.Int64Var(&cfg.seed, "seed", 0,
		"Random seed for the synthetic recording")
	flags.StringVar(&cfg.path, "path", ".",
		"Directory for fixture and scratch files")
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark catalogue and render the comparison table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, cfg)
		},
	}

	workloadFlags(cmd, &cfg)
	cmd.Flags().StringVar(&cfg.format, "format", "rst",
		"Report format: rst or md")
	cmd.Flags().BoolVar(&cfg.textOutput, "text-output", false,
		"Persist the rendered report to a file")

	return cmd
}

// newExecCmd is the worker side of the process boundary: it rebuilds
// the registry from the same flags as the parent, runs exactly one
// scenario, and reports a single JSON measurement on stdout. Logs stay
// on stderr so stdout remains a clean protocol channel.
func newExecCmd() *cobra.Command {
	var (
		cfg        runConfig
		scenarioID string
	)

	cmd := &cobra.Command{
		Use:    "exec",
		Short:  "Run a single scenario in this process (internal)",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			reg := workload.BuildRegistry(cfg.path, workload.Config{
				Channels: cfg.channels,
				Samples:  cfg.samples,
				Seed:     cfg.seed,
			})

			return harness.ExecScenario(reg, scenarioID, os.Stdout)
		},
	}

	workloadFlags(cmd, &cfg)
	cmd.Flags().StringVar(&scenarioID, "scenario", "",
		"Ordinal ID of the scenario to run")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
) error {
	format, err := report.ParseFormat(cfg.format)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(cfg.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	wcfg := workload.Config{
		Channels: cfg.channels,
		Samples:  cfg.samples,
		Seed:     cfg.seed,
	}

	logger.InfoContext(ctx, "generating fixtures",
		slog.String("dir", dir),
		slog.Int("channels", wcfg.Channels),
		slog.Int("samples", wcfg.Samples),
	)

	if err := workload.GenerateFixtures(dir, wcfg); err != nil {
		return fmt.Errorf("generate fixtures: %w", err)
	}

	// Rows and preamble stream to stdout as they are appended, so a
	// long run shows incremental progress before the final render.
	builder := report.NewBuilder(format, func(line string) {
		fmt.Println(line)
	})

	preamble, err := buildPreamble(dir, wcfg)
	if err != nil {
		return fmt.Errorf("build preamble: %w", err)
	}

	builder.AddPreamble(preamble...)

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	baseArgs := []string{
		"exec",
		"--path", dir,
		"--channels", fmt.Sprint(wcfg.Channels),
		"--samples", fmt.Sprint(wcfg.Samples),
		"--seed", fmt.Sprint(wcfg.Seed),
	}

	reg := workload.BuildRegistry(dir, wcfg)
	runner := harness.NewRunner(exe, baseArgs, logger)
	driver := harness.NewDriver(runner, builder, logger)

	defer harness.Cleanup(logger, workload.ScratchFiles(dir)...)

	traces := driver.Run(ctx, reg)

	if len(traces) > 0 {
		fmt.Fprintln(os.Stderr, "\n\nERRORS")
		for _, trace := range traces {
			fmt.Fprintln(os.Stderr, trace)
		}
	}

	if cfg.textOutput {
		name := harness.ReportFilename(candidates(), format)
		path := filepath.Join(dir, name)

		if err := os.WriteFile(path, []byte(builder.Render()), 0o644); err != nil {
			return fmt.Errorf("write report %s: %w", path, err)
		}

		logger.InfoContext(ctx, "report written",
			slog.String("path", path))
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("scenarios", reg.Len()),
		slog.Int("failures", len(traces)),
	)

	return nil
}

func candidates() []harness.Candidate {
	var cs []harness.Candidate
	for _, c := range workload.Codecs() {
		cs = append(cs, harness.Candidate{
			Name:    c.Name(),
			Version: c.Version(),
		})
	}

	return cs
}

// buildPreamble describes the benchmark environment, the notation
// legend, and the fixture files. Host probes that fail (e.g. in
// minimal containers) are skipped rather than fatal.
func buildPreamble(dir string, cfg workload.Config) ([]string, error) {
	lines := []string{"", "", "Benchmark environment", ""}

	lines = append(lines, "* "+runtime.Version())

	if info, err := host.Info(); err == nil {
		lines = append(lines, fmt.Sprintf("* %s %s (%s %s)",
			info.Platform, info.PlatformVersion, info.OS, info.KernelVersion))
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		lines = append(lines, "* "+cpus[0].ModelName)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		installedGB := (vm.Total + (1 << 29)) / (1 << 30)
		lines = append(lines, fmt.Sprintf("* %dGB installed RAM", installedGB))
	}

	lines = append(lines,
		"",
		"Notations used in the results",
		"",
		"* lz4 = file stored with lz4 frame compression",
		"",
		"Files used for benchmark:",
		"",
	)

	stats, err := workload.FixtureStats(dir, cfg)
	if err != nil {
		return nil, err
	}

	for _, stat := range stats {
		lines = append(lines,
			"* "+filepath.Base(stat.Path),
			fmt.Sprintf("    * %d MB file size", stat.SizeMB),
			fmt.Sprintf("    * %d channels", stat.Channels),
			fmt.Sprintf("    * %d samples per channel", stat.Samples),
		)
	}

	lines = append(lines, "", "")

	return lines, nil
}
