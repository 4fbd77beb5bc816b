package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/claude/posecoach/internal/catalog"
)

func newFmtCmd(path *string) *cobra.Command {
	var write, force bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the catalog in canonical form",
		Long:  "Print the catalog in canonical form: normalized names, explicit weights, one blank line between exercises. With --write the file is replaced in place.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := readCatalog(*path)
			if err != nil {
				return err
			}

			if !write {
				_, err := io.WriteString(cmd.OutOrStdout(), catalog.Format(res.Registry))
				return err
			}

			if len(res.Diagnostics) > 0 && !force {
				return fmt.Errorf("refusing to rewrite %s: %d malformed lines would be dropped (use --force)", *path, len(res.Diagnostics))
			}
			if err := catalog.WriteFile(*path, res.Registry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Formatted %s\n", *path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the catalog file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rewrite even if malformed lines would be dropped")
	return cmd
}
