// Package main provides the CLI entry point for colbench, a live
// code-generation A/B benchmark for the column-drawing hot path.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxfall/colbench/codebuf"
	"github.com/voxfall/colbench/codegen"
	"github.com/voxfall/colbench/column"
	"github.com/voxfall/colbench/config"
	"github.com/voxfall/colbench/harness"
	"github.com/voxfall/colbench/report"
	"github.com/voxfall/colbench/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	root := newRootCmd(logger, level)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "colbench",
		Short: "Live code-generation benchmark for the column-drawing hot path",
		Long: `Colbench draws a deterministic synthetic workload through two
renditions of the same column inner loop: machine code generated at runtime
with the active shading table baked in, and a plain compiled loop. It switches
between them live and reports per-mode frame statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, level))

	return root
}

func newRunCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	defaults := config.Default()

	var (
		configPath string
		outputJSON bool
		verbose    bool

		frames       int
		columns      int
		minCount     int
		maxCount     int
		distribution string
		seed         int64
		colormaps    int
		switchEvery  int
		intervalMs   int
		logPath      string
		mode         string
		autoSwitch   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the column-drawing benchmark",
		Long: `Run the benchmark for a fixed number of frames, switching between
the generated and compiled loops, and print a per-mode summary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				level.Set(slog.LevelDebug)
			}

			cfg := config.Default()

			if configPath != "" {
				var err error

				cfg, err = config.Load(configPath, cfg)
				if err != nil {
					return err
				}
			}

			// Flags set on the command line win over the profile file.
			flags := cmd.Flags()
			if flags.Changed("frames") {
				cfg.Frames = frames
			}
			if flags.Changed("columns") {
				cfg.Columns = columns
			}
			if flags.Changed("min-count") {
				cfg.MinCount = minCount
			}
			if flags.Changed("max-count") {
				cfg.MaxCount = maxCount
			}
			if flags.Changed("distribution") {
				cfg.Distribution = distribution
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("colormaps") {
				cfg.Colormaps = colormaps
			}
			if flags.Changed("switch-every") {
				cfg.SwitchEvery = switchEvery
			}
			if flags.Changed("interval-ms") {
				cfg.IntervalMs = intervalMs
			}
			if flags.Changed("log") {
				cfg.Log = logPath
			}
			if flags.Changed("mode") {
				cfg.Mode = mode
			}
			if flags.Changed("auto-switch") {
				cfg.AutoSwitch = autoSwitch
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return runBenchmark(cmd.Context(), logger, cfg, outputJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to a TOML run profile")
	flags.IntVar(&frames, "frames", defaults.Frames,
		"Number of frames to draw")
	flags.IntVar(&columns, "columns", defaults.Columns,
		"Columns drawn per frame")
	flags.IntVar(&minCount, "min-count", defaults.MinCount,
		"Minimum column height")
	flags.IntVar(&maxCount, "max-count", defaults.MaxCount,
		"Maximum column height")
	flags.StringVar(&distribution, "distribution", defaults.Distribution,
		"Column height distribution: power-law, uniform, exponential")
	flags.Int64Var(&seed, "seed", defaults.Seed,
		"Workload random seed")
	flags.IntVar(&colormaps, "colormaps", defaults.Colormaps,
		"Number of shading tables to rotate through")
	flags.IntVar(&switchEvery, "switch-every", defaults.SwitchEvery,
		"Frames between shading table rotations (0 = never)")
	flags.IntVar(&intervalMs, "interval-ms", defaults.IntervalMs,
		"Auto-switch period between modes in milliseconds")
	flags.StringVar(&logPath, "log", defaults.Log,
		"Benchmark CSV log path (empty = no log)")
	flags.StringVar(&mode, "mode", defaults.Mode,
		"Initial mode: jit or branch")
	flags.BoolVar(&autoSwitch, "auto-switch", defaults.AutoSwitch,
		"Switch modes automatically on the interval")
	flags.BoolVar(&outputJSON, "json", false,
		"Output the summary as JSON instead of a table")
	flags.BoolVar(&verbose, "verbose", false,
		"Enable debug logging")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Run,
	outputJSON bool,
) error {
	initial, err := harness.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Int("frames", cfg.Frames),
		slog.Int("columns", cfg.Columns),
		slog.String("distribution", cfg.Distribution),
		slog.Int64("seed", cfg.Seed),
		slog.String("mode", initial.Label()),
		slog.Bool("auto_switch", cfg.AutoSwitch),
	)

	backend := codegen.Select()

	buf, err := codebuf.Acquire()
	if err != nil {
		// Without executable memory every frame runs the reference loop.
		logger.Warn("executable memory unavailable, compiled path disabled",
			slog.String("error", err.Error()),
		)
		buf = nil
	} else {
		defer func() {
			if err := buf.Release(); err != nil {
				logger.Warn("release code buffer",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	gen := codegen.NewGenerator(backend, buf, column.Stride, logger)
	if !gen.Supported() {
		logger.Warn("compiled path unavailable, all draws run the reference loop",
			slog.String("backend", backend.Name()),
		)
	}

	ctrl := harness.NewController(initial, cfg.Interval(), logger)
	ctrl.SetAutoSwitch(cfg.AutoSwitch)

	rec := openRecorder(logger, cfg.Log)

	h := harness.New(ctrl, gen, rec, logger)
	wl := workload.NewGenerator(cfg.Workload())
	runner := harness.NewRunner(h, wl, cfg.Frames, logger)

	runErr := runner.Run(ctx)

	if rec != nil {
		if err := rec.Close(); err != nil {
			logger.Warn("close benchmark log",
				slog.String("error", err.Error()),
			)
		}
	}

	if runErr != nil {
		return runErr
	}

	result := h.Result(backend.Name(), gen.Rewrites())

	if outputJSON {
		if err := report.GenerateJSON(os.Stdout, result); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(os.Stdout, result); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("rewrites", gen.Rewrites()),
		slog.Int64("fallback_calls", result.FallbackCalls),
	)

	return nil
}

// openRecorder opens the CSV benchmark log. Failure is non-fatal: statistics
// stay queryable through the summary even without a log file.
func openRecorder(logger *slog.Logger, path string) *harness.Recorder {
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		logger.Warn("cannot open benchmark log, continuing without",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return nil
	}

	rec, err := harness.NewRecorder(f)
	if err != nil {
		logger.Warn("cannot write benchmark log, continuing without",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		f.Close()

		return nil
	}

	return rec
}
