package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the defined keys in definition order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := c.app.Keys(cmd.Context(), configPath(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KEY\tDEPENDS ON\tEXPR")
			for _, k := range keys {
				deps := strings.Join(k.Dependencies, ",")
				if deps == "" {
					deps = "-"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", k.Key, deps, k.Source)
			}
			return w.Flush()
		},
	}
}
