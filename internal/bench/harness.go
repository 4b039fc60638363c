package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/calluna/rulebench/internal/config"
	"github.com/calluna/rulebench/internal/engine"
	"github.com/calluna/rulebench/internal/rule"
	"github.com/calluna/rulebench/internal/storage"
)

// Factory constructs a fresh storage backend for one benchmark run.
// Construction is where any eager connection attempt happens, so it runs
// outside the measured phases.
type Factory func(ctx context.Context) (storage.Backend, error)

// degrader is implemented by backends that can substitute a fallback
// (currently only Redis). The harness uses it to label results.
type degrader interface {
	Degraded() bool
}

// Harness benchmarks each configured backend under an identical two-phase
// workload. Backends run strictly sequentially so resource contention never
// skews measurements.
type Harness struct {
	cfg       config.Config
	logger    *slog.Logger
	factories map[string]Factory
}

// New creates a harness with the standard backend factories derived from
// the configuration.
func New(cfg config.Config, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &Harness{cfg: cfg, logger: logger, factories: map[string]Factory{}}

	h.factories["memory"] = func(context.Context) (storage.Backend, error) {
		return storage.NewMemory(), nil
	}
	h.factories["sqlite"] = func(context.Context) (storage.Backend, error) {
		return storage.OpenSQLite(cfg.SQLitePath)
	}
	h.factories["redis"] = func(ctx context.Context) (storage.Backend, error) {
		return storage.NewRedis(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Fallback: cfg.RedisFallback,
		})
	}

	return h
}

// SetFactory replaces the factory for a backend name. Tests use this to
// point backends at ephemeral stores.
func (h *Harness) SetFactory(name string, f Factory) {
	h.factories[name] = f
}

// Run benchmarks every configured backend in order and returns the
// collected report. A backend that fails is recorded with a failure marker
// and the run proceeds; only a misconfigured backend selection is fatal.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	report := &Report{Timestamp: time.Now().UTC()}

	for _, name := range h.cfg.Backends {
		factory, ok := h.factories[name]
		if !ok {
			return nil, fmt.Errorf("no factory for backend %q", name)
		}

		h.logger.Info("benchmarking backend", "backend", name)
		result := h.runBackend(ctx, name, factory)
		if result.Failed {
			h.logger.Warn("backend run failed", "backend", name, "error", result.Error)
		} else {
			h.logger.Info("backend run complete",
				"backend", result.BackendName,
				"throughput_msgs_per_sec", result.ThroughputMsgsPerSec,
				"peak_memory_mb", result.PeakMemoryMB)
		}
		report.Results = append(report.Results, result)
	}

	return report, nil
}

// runBackend drives the two-phase workload through one backend. Every
// failure is local to this backend's result.
func (h *Harness) runBackend(ctx context.Context, name string, factory Factory) Result {
	backend, err := factory(ctx)
	if err != nil {
		return failedResult(name, err)
	}
	defer backend.Close()

	// Start from a clean rule set; a leftover database file must not
	// inflate the measured rule count.
	if err := backend.ClearAll(ctx); err != nil {
		return failedResult(backend.Name(), err)
	}
	// Leave nothing behind for the next backend either.
	defer func() { _ = backend.ClearAll(context.WithoutCancel(ctx)) }()

	result := Result{BackendName: backend.Name()}
	if d, ok := backend.(degrader); ok {
		result.Degraded = d.Degraded()
	}

	eng := engine.New(backend, h.logger)

	avgAdd, err := h.runAddPhase(ctx, eng)
	if err != nil {
		result.Failed = true
		result.Error = err.Error()
		return result
	}
	result.AvgAddRuleTime = avgAdd

	throughput, err := h.runProcessPhase(ctx, eng, &result)
	if err != nil {
		result.Failed = true
		result.Error = err.Error()
		return result
	}
	result.ThroughputMsgsPerSec = throughput

	stats := eng.Stats()
	result.AvgProcessTime = stats.AverageProcessingTime
	result.MessagesProcessed = stats.MessagesProcessed
	result.RulesTriggered = stats.RulesTriggered

	return result
}

// runAddPhase adds the configured number of rules and returns the mean
// per-call wall time.
func (h *Harness) runAddPhase(ctx context.Context, eng *engine.Engine) (time.Duration, error) {
	phaseCtx, cancel := context.WithTimeout(ctx, h.cfg.PhaseBudget.Duration)
	defer cancel()

	// Config.Validate rejects a non-positive rule count, but the harness
	// must not panic when handed an unvalidated config.
	if h.cfg.RuleCount <= 0 {
		return 0, fmt.Errorf("rule count must be positive, got %d", h.cfg.RuleCount)
	}

	rules := workloadRules(h.cfg.RuleCount)
	var total time.Duration

	for i, r := range rules {
		if err := phaseCtx.Err(); err != nil {
			return 0, fmt.Errorf("add-rule phase exceeded budget after %d rules: %w", i, err)
		}

		start := time.Now()
		if _, err := eng.AddRule(phaseCtx, r.condition, r.action); err != nil {
			return 0, fmt.Errorf("add rule %d: %w", i, err)
		}
		total += time.Since(start)
	}

	return total / time.Duration(len(rules)), nil
}

// runProcessPhase feeds the synthetic readings through the engine while the
// resource sampler polls, and returns the phase throughput. Peak memory and
// mean CPU are written into result even when the phase fails partway.
func (h *Harness) runProcessPhase(ctx context.Context, eng *engine.Engine, result *Result) (float64, error) {
	if h.cfg.MessageCount <= 0 {
		return 0, fmt.Errorf("message count must be positive, got %d", h.cfg.MessageCount)
	}

	// Generate every reading up front so generation cost never lands in
	// the measured phase.
	gen := newReadingGenerator(h.cfg.Seed)
	messages := make([]rule.Reading, h.cfg.MessageCount)
	for i := range messages {
		messages[i] = gen.Next()
	}

	smp, err := newSampler(h.cfg.MonitorInterval.Duration)
	if err != nil {
		return 0, err
	}
	smp.Start()
	defer func() {
		peak, cpu := smp.Stop()
		result.PeakMemoryMB = peak
		result.AvgCPUPercent = cpu
	}()

	phaseCtx, cancel := context.WithTimeout(ctx, h.cfg.PhaseBudget.Duration)
	defer cancel()

	phaseStart := time.Now()
	for i, msg := range messages {
		if err := phaseCtx.Err(); err != nil {
			return 0, fmt.Errorf("process phase exceeded budget after %d messages: %w", i, err)
		}
		if _, err := eng.ProcessMessage(phaseCtx, msg); err != nil {
			return 0, fmt.Errorf("process message %d: %w", i, err)
		}
	}
	elapsed := time.Since(phaseStart)

	return float64(h.cfg.MessageCount) / elapsed.Seconds(), nil
}
