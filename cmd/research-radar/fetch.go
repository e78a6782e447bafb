// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Query the sources and print the results without storing them",
	Long: `Fetch runs every enabled source adapter concurrently and prints the
merged, newest-first results. Nothing is written to the library; use refresh
to replace the stored items.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	agg, err := newAggregator(cfg.Sources, logger)
	if err != nil {
		return err
	}
	items := agg.Fetch(cmd.Context())

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, items)
	}
	writeTable(os.Stdout, items)
	return nil
}
