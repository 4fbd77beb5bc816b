package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/claude/posecoach/internal/catalog"
)

func newInitCmd(path *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default exercise catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(*path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", *path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check catalog: %w", err)
			}

			res := catalog.ParseString(catalog.DefaultCatalog)
			if err := catalog.WriteFile(*path, res.Registry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d exercises to %s\n", res.Registry.Len(), *path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing catalog")
	return cmd
}
