package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/calluna/rulebench/internal/rule"
	"github.com/calluna/rulebench/internal/storage"
)

// Engine processes readings against the rules held by a storage backend.
//
// The engine never retains rules between calls; each ProcessMessage fetches
// the full set from storage so backend behavior (including its enumeration
// order) is what gets measured. Not safe for concurrent use - the benchmark
// model is single-threaded by design.
type Engine struct {
	backend storage.Backend
	logger  *slog.Logger
	stats   stats
}

// stats is the engine's mutable accumulator. Mutated only by
// ProcessMessage, reset only by ResetStats.
type stats struct {
	messagesProcessed uint64
	rulesTriggered    uint64
	totalProcessing   time.Duration
	samples           []time.Duration // per-call elapsed wall time
}

// New creates an engine over the given backend. A nil logger disables
// engine logging.
func New(backend storage.Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{backend: backend, logger: logger}
}

// Backend returns the storage backend the engine runs over.
func (e *Engine) Backend() storage.Backend { return e.backend }

// AddRule validates and stores a rule, returning its id. Rule additions are
// not counted in processing statistics.
func (e *Engine) AddRule(ctx context.Context, condition, action string) (string, error) {
	id, err := e.backend.AddRule(ctx, rule.New(condition, action))
	if err != nil {
		return "", fmt.Errorf("add rule: %w", err)
	}
	e.logger.Debug("rule added", "id", id, "condition", condition)
	return id, nil
}

// ProcessMessage evaluates every stored rule against the reading and
// returns the actions of the rules that matched, in storage-returned order,
// duplicates preserved. The full rule set is always evaluated - no
// short-circuit after a match.
//
// Each call increments the message counter, adds the number of matches to
// the triggered counter, and appends the call's elapsed wall time to the
// sample sequence. Storage contents are never mutated.
func (e *Engine) ProcessMessage(ctx context.Context, reading rule.Reading) ([]string, error) {
	start := time.Now()

	rules, err := e.backend.GetAllRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("process message: %w", err)
	}

	triggered := []string{}
	for _, r := range rules {
		// Conditions were validated at add-time, so a parse failure here
		// means the store was tampered with; skip rather than abort.
		cond, err := rule.ParseCondition(r.Condition)
		if err != nil {
			e.logger.Warn("skipping stored rule with malformed condition", "id", r.ID, "error", err)
			continue
		}
		if cond.Eval(reading) {
			triggered = append(triggered, r.Action)
		}
	}

	elapsed := time.Since(start)
	e.stats.messagesProcessed++
	e.stats.rulesTriggered += uint64(len(triggered))
	e.stats.totalProcessing += elapsed
	e.stats.samples = append(e.stats.samples, elapsed)

	return triggered, nil
}

// ResetStats zeroes all counters and clears the sample sequence. Storage is
// untouched.
func (e *Engine) ResetStats() {
	e.stats = stats{}
}
