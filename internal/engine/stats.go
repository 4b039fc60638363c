package engine

import "time"

// StatsSnapshot is a read-only copy of the engine's statistics at a point
// in time. Snapshots do not alias engine state; mutating the returned
// sample slice has no effect on the engine.
type StatsSnapshot struct {
	// MessagesProcessed counts ProcessMessage calls since the last reset.
	MessagesProcessed uint64 `json:"messages_processed"`

	// RulesTriggered counts rule matches across all processed messages.
	// Invariant: RulesTriggered <= MessagesProcessed * rule count.
	RulesTriggered uint64 `json:"rules_triggered"`

	// TotalProcessingTime is the summed wall time of all calls.
	TotalProcessingTime time.Duration `json:"total_processing_time"`

	// AverageProcessingTime is TotalProcessingTime / max(MessagesProcessed, 1).
	AverageProcessingTime time.Duration `json:"average_processing_time"`

	// Samples holds the per-call elapsed wall times in call order.
	Samples []time.Duration `json:"-"`
}

// Stats returns a snapshot of the accumulated statistics.
func (e *Engine) Stats() StatsSnapshot {
	divisor := e.stats.messagesProcessed
	if divisor == 0 {
		divisor = 1
	}

	samples := make([]time.Duration, len(e.stats.samples))
	copy(samples, e.stats.samples)

	return StatsSnapshot{
		MessagesProcessed:     e.stats.messagesProcessed,
		RulesTriggered:        e.stats.rulesTriggered,
		TotalProcessingTime:   e.stats.totalProcessing,
		AverageProcessingTime: e.stats.totalProcessing / time.Duration(divisor),
		Samples:               samples,
	}
}
