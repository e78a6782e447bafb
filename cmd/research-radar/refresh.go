// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Discard the stored library and ingest it again",
	Long: `Refresh deletes every stored item, including annotations, then fetches
from the sources and stores the results. When every source fails the
fallback sample set is stored instead.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, summary := a.session.RefreshData(ctx)
	if snap.Notice != "" {
		fmt.Fprintln(os.Stderr, snap.Notice)
	}
	fmt.Fprintf(os.Stdout, "fetched %d, stored %d, already present %d, failed %d\n",
		summary.Fetched, summary.Inserted, summary.Existing, summary.Failed)
	if summary.Fallback {
		fmt.Fprintln(os.Stdout, "sources returned nothing; stored the fallback set")
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d item(s) could not be stored", summary.Failed)
	}
	return nil
}
