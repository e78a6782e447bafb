// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-radar/internal/view"
	"github.com/pdiddy/research-radar/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the stored library",
	Long: `Stats prints totals per source, annotation counts, the relevance
histogram, the most common tags, and user ratings for the whole library,
ignoring filters.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.Load(ctx)
	s := a.session.Stats()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, s)
	}
	writeStats(os.Stdout, s)
	return nil
}

func writeStats(w io.Writer, s view.Stats) {
	fmt.Fprintf(w, "Items:       %d (arxiv %d, github %d)\n",
		s.Total, s.BySource[types.SourceArxiv], s.BySource[types.SourceGitHub])
	fmt.Fprintf(w, "Starred:     %d\n", s.Starred)
	fmt.Fprintf(w, "Interested:  %d\n", s.Interested)
	fmt.Fprintf(w, "Read:        %d\n", s.Read)
	if s.Scored > 0 {
		fmt.Fprintf(w, "Rated:       %d (average %.1f)\n", s.Scored, s.AverageUserScore)
	} else {
		fmt.Fprintln(w, "Rated:       0")
	}

	fmt.Fprintln(w, "\nRelevance")
	for score, n := range s.RelevanceHistogram {
		fmt.Fprintf(w, "  %2d  %-4d %s\n", score, n, strings.Repeat("#", n))
	}

	if len(s.TopTags) > 0 {
		fmt.Fprintln(w, "\nTop tags")
		for _, tc := range s.TopTags {
			fmt.Fprintf(w, "  %-24s %d\n", tc.Tag, tc.Count)
		}
	}
}
