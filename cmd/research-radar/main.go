// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-radar CLI. It ingests
// agent and LLM research from arXiv and GitHub into a local library, lets
// the user filter and annotate it, and serves it over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/logging"
	"github.com/pdiddy/research-radar/internal/secrets"
	"github.com/pdiddy/research-radar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	secretsDir = ".secrets/"
	dotenvFile = ".env"
)

// cfg and logger are populated by PersistentPreRunE before any subcommand runs.
var (
	cfg    types.Config
	logger = zap.NewNop()
)

// rootCmd is the base command for the research-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "research-radar",
	Short: "Track recent agent and LLM research from arXiv and GitHub",
	Long: `research-radar pulls recent agent and LLM papers from arXiv and
repositories from GitHub, scores and tags them, and keeps them in a local
library. Filter the library, star, rate or mark items as read, and serve it
over HTTP for a browser front end.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		log, err := logging.New(c.Log)
		if err != nil {
			return err
		}

		loaded, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		if len(loaded) > 0 {
			keys := make([]string, 0, len(loaded))
			for k := range loaded {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug("loaded secrets", zap.Strings("keys", keys))
		}

		if c.Sources.GitHub.Token == "" {
			token, err := secrets.Resolve(secretsDir, dotenvFile, secrets.GitHubToken)
			if err != nil {
				return err
			}
			c.Sources.GitHub.Token = token
		}

		cfg = c
		logger = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./research-radar.yaml or ~/.config/research-radar/research-radar.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	flags.String("store-driver", "", "storage backend: sqlite or postgres")
	flags.String("store-path", "", "SQLite database file")
	flags.String("store-dsn", "", "Postgres connection string")

	bindFlags(viper.GetViper(), flags, map[string]string{
		"log.level":    "log-level",
		"log.format":   "log-format",
		"store.driver": "store-driver",
		"store.path":   "store-path",
		"store.dsn":    "store-dsn",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if used, err := configureViper(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
	} else if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
