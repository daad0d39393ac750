package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the cache storages",
	}

	cmd.AddCommand(c.newCacheKeyCmd())
	cmd.AddCommand(c.newCacheListCmd())
	cmd.AddCommand(c.newCachePurgeCmd())

	return cmd
}

func (c *CLI) newCacheKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the cache key of a parameter set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pairs, _ := cmd.Flags().GetStringArray("param")
			params, err := parseParams(pairs)
			if err != nil {
				return err
			}

			key, err := c.app.CacheKey(cmd.Context(), configPath(cmd), params)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringArrayP("param", "p", nil, "Set a parameter as name=value")

	return cmd
}

func (c *CLI) newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the persisted cache entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listed, err := c.app.ListEntries(cmd.Context(), configPath(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STORAGE\tKEY\tSIZE\tSTORED")
			for _, se := range listed {
				for _, e := range se.Entries {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						se.Storage, e.Key, humanize.Bytes(uint64(max(e.Size, 0))), humanize.Time(e.StoredAt))
				}
			}
			return w.Flush()
		},
	}
}

func (c *CLI) newCachePurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove persisted cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")

			removed, err := c.app.Purge(cmd.Context(), configPath(cmd), olderThan)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
			return nil
		},
	}

	cmd.Flags().Duration("older-than", 0, "Only remove entries stored longer ago than this (default: all)")

	return cmd
}
