package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calluna/rulebench/internal/rule"
	"github.com/calluna/rulebench/internal/storage"
)

// RulesOptions holds flags shared by the rule management subcommands.
type RulesOptions struct {
	*RootOptions
	Backend    string
	SQLitePath string
	RedisAddr  string
	NoFallback bool
}

// NewRulesCommand creates the rules command group: direct rule management
// against a single backend, outside any benchmark run.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage rules in a storage backend",
		Long: `Add, list and delete rules directly against one storage backend.

Useful for inspecting what a benchmark left behind in a persistent backend,
or for seeding a database ahead of a run.

Example:
  rulebench rules --backend sqlite --sqlite rules.db add "temperature > 25" "High temp"
  rulebench rules --backend sqlite --sqlite rules.db list`,
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "memory", "backend to operate on (memory|sqlite|redis)")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite", "rulebench.db", "sqlite database path")
	cmd.PersistentFlags().StringVar(&opts.RedisAddr, "redis-addr", "localhost:6379", "redis endpoint")
	cmd.PersistentFlags().BoolVar(&opts.NoFallback, "no-fallback", false, "fail instead of falling back to memory when redis is unreachable")

	cmd.AddCommand(newRulesAddCommand(opts))
	cmd.AddCommand(newRulesListCommand(opts))
	cmd.AddCommand(newRulesDeleteCommand(opts))
	cmd.AddCommand(newRulesClearCommand(opts))

	return cmd
}

// openBackend constructs the backend selected by --backend.
func openBackend(ctx context.Context, opts *RulesOptions) (storage.Backend, error) {
	switch opts.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "sqlite":
		return storage.OpenSQLite(opts.SQLitePath)
	case "redis":
		return storage.NewRedis(ctx, storage.RedisOptions{
			Addr:     opts.RedisAddr,
			Fallback: !opts.NoFallback,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q: must be one of memory, sqlite, redis", opts.Backend)
	}
}

func newRulesAddCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <condition> <action>",
		Short:         "Add a rule",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open backend", err)
			}
			defer backend.Close()

			id, err := backend.AddRule(cmd.Context(), rule.New(args[0], args[1]))
			if err != nil {
				if rule.IsValidationError(err) {
					return WrapExitError(ExitFailure, "rule rejected", err)
				}
				return WrapExitError(ExitCommandError, "failed to add rule", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return formatter.Success(map[string]string{"id": id})
			}
			return formatter.Success(fmt.Sprintf("added rule %s", id))
		},
	}
}

func newRulesListCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all rules",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open backend", err)
			}
			defer backend.Close()

			rules, err := backend.GetAllRules(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list rules", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return formatter.Success(rules)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%d rule(s) in %s\n", len(rules), backend.Name())
			for _, r := range rules {
				fmt.Fprintf(&b, "  %s  %-24s -> %s\n", r.ID, r.Condition, r.Action)
			}
			return formatter.Success(strings.TrimRight(b.String(), "\n"))
		},
	}
}

func newRulesDeleteCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a rule by id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open backend", err)
			}
			defer backend.Close()

			deleted, err := backend.DeleteRule(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to delete rule", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if !deleted {
				return NewExitError(ExitFailure, fmt.Sprintf("rule %s not found", args[0]))
			}
			if opts.Format == "json" {
				return formatter.Success(map[string]bool{"deleted": true})
			}
			return formatter.Success(fmt.Sprintf("deleted rule %s", args[0]))
		},
	}
}

func newRulesClearCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Remove every rule",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context(), opts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open backend", err)
			}
			defer backend.Close()

			if err := backend.ClearAll(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "failed to clear rules", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return formatter.Success(map[string]bool{"cleared": true})
			}
			return formatter.Success("cleared all rules")
		},
	}
}
