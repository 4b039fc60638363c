package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Result is the measurement record for one backend's run. Immutable once
// the backend's run completes.
type Result struct {
	// BackendName identifies the backend (including fallback labeling,
	// e.g. "redis (fallback: memory)").
	BackendName string `json:"backend_name"`

	// Degraded is true when the backend ran in fallback mode, so network
	// behavior is never silently credited to a server that never ran.
	Degraded bool `json:"degraded,omitempty"`

	// Failed marks a backend whose run did not complete; Error carries
	// the reason. Measurements in a failed result are partial.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`

	// ThroughputMsgsPerSec is messages processed divided by the total
	// wall time of the processing phase.
	ThroughputMsgsPerSec float64 `json:"throughput_msgs_per_sec"`

	// AvgAddRuleTime is the mean per-call wall time of the add-rule phase.
	AvgAddRuleTime time.Duration `json:"avg_add_rule_time"`

	// AvgProcessTime is the mean per-call wall time of the processing phase.
	AvgProcessTime time.Duration `json:"avg_process_time"`

	// PeakMemoryMB is the highest resident set size observed while
	// processing, in megabytes.
	PeakMemoryMB float64 `json:"peak_memory_mb"`

	// AvgCPUPercent is the mean process CPU utilization observed while
	// processing.
	AvgCPUPercent float64 `json:"avg_cpu_percent"`

	// MessagesProcessed and RulesTriggered are the engine's counters for
	// the run.
	MessagesProcessed uint64 `json:"messages_processed"`
	RulesTriggered    uint64 `json:"rules_triggered"`
}

// failedResult builds the record for a backend whose run broke off.
func failedResult(name string, err error) Result {
	return Result{BackendName: name, Failed: true, Error: err.Error()}
}

// Report is the full run artifact: every backend's result in run order.
// External visualization consumes exactly this structure.
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Results   []Result  `json:"results"`
}

// WriteFile persists the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
