package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calluna/rulebench/internal/bench"
	"github.com/calluna/rulebench/internal/config"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	ConfigPath   string
	RuleCount    int
	MessageCount int
	Interval     time.Duration
	Seed         int64
	Backends     []string
	SQLitePath   string
	RedisAddr    string
	NoFallback   bool
	OutputPath   string
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the storage backend benchmark",
		Long: `Run the two-phase benchmark workload against each configured storage
backend and write the comparison report.

Backends run strictly sequentially. A backend that fails (for example an
unreachable Redis server with fallback disabled) is recorded with a failure
marker and the run proceeds to the next backend.

Example:
  rulebench bench
  rulebench bench --config bench.yaml --output results.json
  rulebench bench --backends memory,sqlite --rules 100 --messages 10000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().IntVar(&opts.RuleCount, "rules", 0, "number of rules to add in phase one")
	cmd.Flags().IntVar(&opts.MessageCount, "messages", 0, "number of synthetic readings in phase two")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "resource sampling interval")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for the synthetic reading generator")
	cmd.Flags().StringSliceVar(&opts.Backends, "backends", nil, "backends to benchmark, in run order")
	cmd.Flags().StringVar(&opts.SQLitePath, "sqlite", "", "sqlite database path (\":memory:\" for ephemeral)")
	cmd.Flags().StringVar(&opts.RedisAddr, "redis-addr", "", "redis endpoint")
	cmd.Flags().BoolVar(&opts.NoFallback, "no-fallback", false, "fail the redis backend instead of falling back to memory")
	cmd.Flags().StringVar(&opts.OutputPath, "output", "", "JSON result artifact path (\"\" uses the config value)")

	return cmd
}

func runBench(opts *BenchOptions, cmd *cobra.Command) error {
	cfg, err := loadBenchConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// The benchmark is long-running; let Ctrl-C cancel the in-flight phase
	// and record the backend as failed rather than dropping everything.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	harness := bench.New(cfg, slog.Default())
	report, err := harness.Run(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "benchmark run failed", err)
	}

	if cfg.OutputPath != "" {
		if err := report.WriteFile(cfg.OutputPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to write result artifact", err)
		}
		slog.Info("result artifact written", "path", cfg.OutputPath)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else if err := formatter.Success(bench.RenderSummary(report.Results)); err != nil {
		return err
	}

	for _, r := range report.Results {
		if r.Failed {
			return NewExitError(ExitFailure, fmt.Sprintf("backend %s failed: %s", r.BackendName, r.Error))
		}
	}
	return nil
}

// loadBenchConfig layers flag overrides on top of the config file (or the
// defaults when no file is given).
func loadBenchConfig(opts *BenchOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("rules") {
		cfg.RuleCount = opts.RuleCount
	}
	if flags.Changed("messages") {
		cfg.MessageCount = opts.MessageCount
	}
	if flags.Changed("interval") {
		cfg.MonitorInterval = config.D(opts.Interval)
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if flags.Changed("backends") {
		cfg.Backends = opts.Backends
	}
	if flags.Changed("sqlite") {
		cfg.SQLitePath = opts.SQLitePath
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = opts.RedisAddr
	}
	if flags.Changed("no-fallback") {
		cfg.RedisFallback = !opts.NoFallback
	}
	if flags.Changed("output") {
		cfg.OutputPath = opts.OutputPath
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
