// Package config loads and validates benchmark configuration.
//
// Configuration is a flat YAML document of scalar parameters; defaults make
// an empty file (or no file at all) a runnable configuration.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Known backend names accepted in the backends list.
var knownBackends = []string{"memory", "sqlite", "redis"}

// Config holds every parameter the benchmark harness consumes.
type Config struct {
	// RuleCount is the number of rules added in phase one.
	RuleCount int `yaml:"rule_count"`

	// MessageCount is the number of synthetic readings processed in phase two.
	MessageCount int `yaml:"message_count"`

	// MonitorInterval is the resource-sampling cadence during phase two.
	MonitorInterval Duration `yaml:"monitor_interval"`

	// PhaseBudget bounds each phase's wall-clock time. A backend that
	// exceeds the budget is recorded as failed instead of hanging the run.
	PhaseBudget Duration `yaml:"phase_budget"`

	// Seed drives the synthetic reading generator for reproducible runs.
	Seed int64 `yaml:"seed"`

	// Backends lists which backends to benchmark, in run order.
	Backends []string `yaml:"backends"`

	// SQLitePath is the database file used by the sqlite backend.
	// ":memory:" runs it without disk persistence.
	SQLitePath string `yaml:"sqlite_path"`

	// RedisAddr is the redis endpoint for the redis backend.
	RedisAddr string `yaml:"redis_addr"`

	// RedisFallback enables the redis backend's transparent fallback to
	// memory when the server is unreachable. When disabled an unreachable
	// server is recorded as a failed result.
	RedisFallback bool `yaml:"redis_fallback"`

	// OutputPath is where the JSON result artifact is written.
	// Empty disables the artifact.
	OutputPath string `yaml:"output_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		RuleCount:       10,
		MessageCount:    1000,
		MonitorInterval: D(100 * time.Millisecond),
		PhaseBudget:     D(5 * time.Minute),
		Seed:            1,
		Backends:        []string{"memory", "sqlite", "redis"},
		SQLitePath:      "rulebench.db",
		RedisAddr:       "localhost:6379",
		RedisFallback:   true,
		OutputPath:      "benchmark_results.json",
	}
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is runnable. An invalid backend
// selection is a configuration-level error and fatal to the run.
func (c Config) Validate() error {
	if c.RuleCount <= 0 {
		return fmt.Errorf("rule_count must be positive, got %d", c.RuleCount)
	}
	if c.MessageCount <= 0 {
		return fmt.Errorf("message_count must be positive, got %d", c.MessageCount)
	}
	if c.MonitorInterval.Duration <= 0 {
		return fmt.Errorf("monitor_interval must be positive, got %s", c.MonitorInterval)
	}
	if c.PhaseBudget.Duration <= 0 {
		return fmt.Errorf("phase_budget must be positive, got %s", c.PhaseBudget)
	}
	if len(c.Backends) == 0 {
		return fmt.Errorf("backends list is empty")
	}
	for _, b := range c.Backends {
		if !slices.Contains(knownBackends, b) {
			return fmt.Errorf("unknown backend %q: must be one of %v", b, knownBackends)
		}
	}
	return nil
}
