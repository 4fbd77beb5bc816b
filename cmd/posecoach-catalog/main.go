// Command posecoach-catalog inspects and maintains exercise catalog files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/claude/posecoach/internal/catalog"
)

func newRootCmd() *cobra.Command {
	var path string

	root := &cobra.Command{
		Use:           "posecoach-catalog",
		Short:         "Inspect and maintain posecoach exercise catalogs",
		Long:          "posecoach-catalog creates, checks, formats and lists the plain-text exercise catalog read by the posecoach server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&path, "catalog", "c", defaultCatalogPath(), "Path to the exercise catalog (env POSECOACH_CATALOG)")

	root.AddCommand(
		newInitCmd(&path),
		newCheckCmd(&path),
		newFmtCmd(&path),
		newListCmd(&path),
		newShowCmd(&path),
	)
	return root
}

func defaultCatalogPath() string {
	if p := os.Getenv("POSECOACH_CATALOG"); p != "" {
		return p
	}
	return "exercises.txt"
}

// readCatalog parses the file at path without creating it.
func readCatalog(path string) (*catalog.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return catalog.Parse(f)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
