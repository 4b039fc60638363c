package bench

import (
	"fmt"
	"strings"
)

// RenderSummary renders the per-backend comparison as a fixed-width table
// for terminal output. The JSON artifact, not this table, is the machine
// contract.
func RenderSummary(results []Result) string {
	var b strings.Builder

	b.WriteString("Benchmark Summary\n")
	b.WriteString(strings.Repeat("=", 78) + "\n")
	fmt.Fprintf(&b, "%-28s %-12s %-10s %-10s %-9s %-7s\n",
		"Backend", "Msgs/sec", "Avg add", "Avg proc", "Peak MB", "CPU %")
	b.WriteString(strings.Repeat("-", 78) + "\n")

	for _, r := range results {
		if r.Failed {
			fmt.Fprintf(&b, "%-28s FAILED: %s\n", r.BackendName, r.Error)
			continue
		}
		fmt.Fprintf(&b, "%-28s %-12.2f %-10s %-10s %-9.2f %-7.2f\n",
			r.BackendName,
			r.ThroughputMsgsPerSec,
			r.AvgAddRuleTime,
			r.AvgProcessTime,
			r.PeakMemoryMB,
			r.AvgCPUPercent)
	}

	return b.String()
}
