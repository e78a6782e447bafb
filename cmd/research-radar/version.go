// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build details of research-radar",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(version, info))
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(versionCmd)
}

// versionString renders the release version plus the Go toolchain and VCS
// revision recorded in the binary, when present.
func versionString(v string, info *debug.BuildInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "research-radar %s", v)
	if info == nil {
		return b.String()
	}
	fmt.Fprintf(&b, " (%s", info.GoVersion)
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		fmt.Fprintf(&b, ", %s", revision)
		if dirty {
			b.WriteString("-dirty")
		}
	}
	b.WriteString(")")
	return b.String()
}
