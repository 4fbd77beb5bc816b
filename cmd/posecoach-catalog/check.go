package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/posecoach/internal/models"
)

func newCheckCmd(path *string) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report malformed lines and unknown joints",
		Long:  "Parse the catalog and report every line the server would skip. Rules that name a joint outside the 33 pose landmarks are valid but can never be scored, so they are reported as warnings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := readCatalog(*path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, d := range res.Diagnostics {
				fmt.Fprintf(out, "%s:%d: %v\n    %s\n", *path, d.Line, d.Err, d.Text)
			}

			rules, warnings := 0, 0
			for _, ex := range res.Registry.Exercises() {
				for i, r := range ex.Rules {
					rules++
					for _, j := range r.Joints() {
						if !models.IsKnownJoint(j) {
							warnings++
							fmt.Fprintf(out, "warning: %s rule %d: unknown joint %q\n", ex.Name, i+1, j)
						}
					}
				}
			}

			fmt.Fprintf(out, "%d exercises, %d rules, %d lines skipped, %d warnings\n",
				res.Registry.Len(), rules, len(res.Diagnostics), warnings)

			if len(res.Diagnostics) > 0 {
				return fmt.Errorf("%d malformed lines", len(res.Diagnostics))
			}
			if strict && warnings > 0 {
				return fmt.Errorf("%d warnings", warnings)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	return cmd
}
