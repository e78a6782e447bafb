// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-radar/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored library to a YAML or JSON file",
	Long: `Export writes every stored item with its annotations to a file. The
whole library is exported regardless of filters.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("out", "", "output file (default export/library.<format>)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("export/library.%s", format)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	entities, err := a.gateway.LoadAll(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteFile(out, format, entities, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "exported %d item(s) to %s\n", len(entities), out)
	return nil
}
