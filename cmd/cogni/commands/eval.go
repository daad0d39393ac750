package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/cogni/internal/app"
)

func (c *CLI) newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [key]",
		Short: "Compute the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("param")
			noCache, _ := cmd.Flags().GetBool("no-cache")

			params, err := parseParams(pairs)
			if err != nil {
				return err
			}

			value, err := c.app.Eval(cmd.Context(), configPath(cmd), args[0], app.EvalOptions{
				Params:  params,
				NoCache: noCache,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
			return nil
		},
	}

	cmd.Flags().StringArrayP("param", "p", nil, "Set a parameter as name=value")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the cache store")

	return cmd
}
