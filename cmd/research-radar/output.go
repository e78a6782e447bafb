// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/research-radar/pkg/types"
)

const titleWidth = 50

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable prints entities as a fixed-width table.
func writeTable(w io.Writer, entities []types.ResearchEntity) {
	if len(entities) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}

	fmt.Fprintf(w, "%-28s  %-6s  %-10s  %-3s  %-5s  %-5s  %s\n",
		"ID", "Source", "Date", "Rel", "Flags", "Score", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, e := range entities {
		title := e.Title
		if len(title) > titleWidth {
			title = title[:titleWidth-3] + "..."
		}
		score := "-"
		if e.UserScore != nil {
			score = strconv.Itoa(*e.UserScore)
		}
		fmt.Fprintf(w, "%-28s  %-6s  %-10s  %-3d  %-5s  %-5s  %s\n",
			e.ID, e.Source, e.Date.Format("2006-01-02"), e.RelevanceScore, flags(e), score, title)
	}
	fmt.Fprintf(w, "\n%d item(s)\n", len(entities))
}

// flags renders the annotation state as S (starred), I (interested), R (read).
func flags(e types.ResearchEntity) string {
	var b strings.Builder
	for _, f := range []struct {
		set  bool
		char byte
	}{{e.IsStarred, 'S'}, {e.IsInterested, 'I'}, {e.IsRead, 'R'}} {
		if f.set {
			b.WriteByte(f.char)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
