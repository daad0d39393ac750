// Package commands implements the CLI commands for cogni.
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/cogni/internal/adapters/metrics"
	"go.trai.ch/cogni/internal/app"
	"go.trai.ch/cogni/internal/build"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
)

// CLI represents the command line interface for cogni.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	logger  formatSwitcher
	metrics *metrics.Counter
}

// Application represents the application logic interface.
type Application interface {
	Eval(ctx context.Context, configPath, key string, opts app.EvalOptions) (any, error)
	RunBatch(ctx context.Context, configPath, key string, opts app.BatchOptions) ([]app.RunResult, error)
	Keys(ctx context.Context, configPath string) ([]app.KeyInfo, error)
	CacheKey(ctx context.Context, configPath string, params domain.Params) (string, error)
	ListEntries(ctx context.Context, configPath string) ([]app.StorageEntries, error)
	Purge(ctx context.Context, configPath string, olderThan time.Duration) (int, error)
}

type formatSwitcher interface {
	SetJSON(enabled bool)
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogger lets the --json flag switch the log format of logger.
// Loggers without a JSON mode are ignored.
func WithLogger(logger ports.Logger) Option {
	return func(c *CLI) {
		if fs, ok := logger.(formatSwitcher); ok {
			c.logger = fs
		}
	}
}

// WithMetrics lets the --stats flag print the counters of m.
func WithMetrics(m *metrics.Counter) Option {
	return func(c *CLI) {
		c.metrics = m
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cogni",
		Short:         "Evaluate dependent computations with layered caching",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", domain.ConfigFileName, "Path to the definition file")
	rootCmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("stats", false, "Print cache counters after the command")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if jsonLogs, _ := cmd.Flags().GetBool("json"); jsonLogs && c.logger != nil {
			c.logger.SetJSON(true)
		}
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, _ []string) {
		if showStats, _ := cmd.Flags().GetBool("stats"); showStats && c.metrics != nil {
			printStats(cmd.ErrOrStderr(), c.metrics.Snapshot())
		}
	}

	rootCmd.AddCommand(c.newEvalCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newKeysCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func printStats(w io.Writer, samples []metrics.Sample) {
	for _, s := range samples {
		if s.Labels == "" {
			_, _ = fmt.Fprintf(w, "%s %g\n", s.Name, s.Value)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s{%s} %g\n", s.Name, s.Labels, s.Value)
	}
}
