// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/research-radar/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored library through the filters",
	Long: `List loads the library (populating an empty store from the sources)
and prints the items that pass every filter, newest first. Without flags the
default view applies: all sources, the last 7 days.`,
	RunE: runList,
}

func init() {
	f := listCmd.Flags()
	f.String("source", "all", "source: all, arxiv, github")
	f.Int("min-relevance", 0, "minimum relevance score (0-10)")
	f.Int("days", types.DefaultDateRangeDays, "only items from the last N days (0 disables)")
	f.String("read", "all", "read status: all, read, unread")
	f.String("starred", "all", "star status: all, starred, unstarred")
	f.String("interest", "all", "interest status: all, interested, not-interested")
	f.String("search", "", "case-insensitive text over title, description, tags, authors")
	f.Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(listCmd)
}

// patchFromFlags builds a CriteriaPatch holding only the flags the user set.
func patchFromFlags(f *pflag.FlagSet) types.CriteriaPatch {
	var p types.CriteriaPatch
	if f.Changed("source") {
		v, _ := f.GetString("source")
		s := types.SourceFilter(v)
		p.Source = &s
	}
	if f.Changed("min-relevance") {
		v, _ := f.GetInt("min-relevance")
		p.MinRelevance = &v
	}
	if f.Changed("days") {
		v, _ := f.GetInt("days")
		p.DateRangeDays = &v
	}
	if f.Changed("read") {
		v, _ := f.GetString("read")
		s := types.ReadStatus(v)
		p.ReadStatus = &s
	}
	if f.Changed("starred") {
		v, _ := f.GetString("starred")
		s := types.StarStatus(v)
		p.StarStatus = &s
	}
	if f.Changed("interest") {
		v, _ := f.GetString("interest")
		s := types.InterestStatus(v)
		p.InterestStatus = &s
	}
	if f.Changed("search") {
		v, _ := f.GetString("search")
		p.SearchQuery = &v
	}
	return p
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.Load(ctx)
	snap, err := a.session.UpdateFilters(patchFromFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	if snap.Notice != "" {
		fmt.Fprintln(os.Stderr, snap.Notice)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, snap)
	}
	writeTable(os.Stdout, snap.Items)
	return nil
}
