package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/posecoach/internal/catalog"
)

func newShowCmd(path *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show the rules of one exercise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := readCatalog(*path)
			if err != nil {
				return err
			}
			rules, ok := res.Registry.Rules(args[0])
			if !ok {
				return fmt.Errorf("exercise %q not found in %s", args[0], *path)
			}
			key := catalog.NormalizeName(args[0])
			out := cmd.OutOrStdout()

			if asJSON {
				data, err := json.MarshalIndent(catalog.Exercise{Name: key, DisplayName: catalog.DisplayName(key), Rules: rules}, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "%s (%s)\n", catalog.DisplayName(key), key)
			for _, r := range rules {
				fmt.Fprintln(out, catalog.FormatRule(r))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the exercise as JSON")
	return cmd
}
