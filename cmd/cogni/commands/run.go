package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/cogni/internal/app"
	"go.trai.ch/cogni/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [key]",
		Short: "Compute a key for every configured run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, _ := cmd.Flags().GetInt("jobs")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			results, err := c.app.RunBatch(cmd.Context(), configPath(cmd), args[0], app.BatchOptions{
				Parallelism: jobs,
				NoCache:     noCache,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				_, _ = fmt.Fprintf(out, "%s: %s\n", formatParams(r.Params), formatValue(r.Value))
			}
			return nil
		},
	}

	cmd.Flags().IntP("jobs", "j", 0, "Number of concurrent runs (default: number of CPUs)")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the cache store")

	return cmd
}

func formatParams(params domain.Params) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + formatValue(params[name])
	}
	return strings.Join(parts, " ")
}
