package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exercises in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := readCatalog(*path)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tRULES")
			for _, ex := range res.Registry.Exercises() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", ex.Name, ex.DisplayName, len(ex.Rules))
			}
			return tw.Flush()
		},
	}
}
