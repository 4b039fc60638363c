package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna/rulebench/internal/bench"
)

// runCLI executes the root command with the given args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBenchCommand_MemoryOnly(t *testing.T) {
	output := filepath.Join(t.TempDir(), "results.json")

	stdout, err := runCLI(t,
		"bench",
		"--backends", "memory",
		"--rules", "3",
		"--messages", "20",
		"--interval", "1ms",
		"--output", output,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Benchmark Summary")
	assert.Contains(t, stdout, "memory")

	// The artifact is the machine-readable contract.
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var report bench.Report
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Results, 1)
	assert.Equal(t, "memory", report.Results[0].BackendName)
	assert.Equal(t, uint64(20), report.Results[0].MessagesProcessed)
}

func TestBenchCommand_JSONFormat(t *testing.T) {
	stdout, err := runCLI(t,
		"--format", "json",
		"bench",
		"--backends", "memory",
		"--rules", "2",
		"--messages", "10",
		"--interval", "1ms",
		"--output", "",
	)
	require.NoError(t, err)

	var report bench.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Failed)
}

func TestBenchCommand_FailedBackendExitCode(t *testing.T) {
	_, err := runCLI(t,
		"bench",
		"--backends", "redis",
		"--redis-addr", "127.0.0.1:1",
		"--no-fallback",
		"--rules", "2",
		"--messages", "10",
		"--output", "",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestBenchCommand_InvalidConfig(t *testing.T) {
	_, err := runCLI(t,
		"bench",
		"--backends", "mongodb",
		"--output", "",
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBenchCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rule_count: 2
message_count: 10
backends: [memory]
output_path: ""
`), 0o644))

	stdout, err := runCLI(t, "bench", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "memory")
}
