// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the library over HTTP",
	Long: `Serve loads the library (populating an empty store from the sources)
and exposes it as a JSON API with a websocket feed of view changes. It runs
until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origin (repeatable, * for any)")
	bindFlags(viper.GetViper(), serveCmd.Flags(), map[string]string{
		"server.addr":         "addr",
		"server.cors_origins": "cors-origin",
	})

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	snap := a.session.Load(ctx)
	logger.Info("library loaded", zap.Int("items", snap.Total), zap.Int("visible", len(snap.Items)))

	return httpapi.NewServer(cfg.Server, a.session, logger).Run(ctx)
}
