// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/annotate"
	"github.com/pdiddy/research-radar/internal/gateway"
	"github.com/pdiddy/research-radar/internal/ingest"
	"github.com/pdiddy/research-radar/internal/session"
	"github.com/pdiddy/research-radar/internal/store"
	"github.com/pdiddy/research-radar/pkg/types"
)

// app is the wired component graph shared by the library subcommands.
type app struct {
	store   *store.SQLStore
	gateway *gateway.Gateway
	session *session.Session
}

// newApp opens the store and wires sources, gateway, mutator and session.
func newApp(ctx context.Context, c types.Config, log *zap.Logger) (*app, error) {
	st, err := store.Open(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	log.Debug("store opened", zap.String("driver", st.Driver()))

	agg, err := newAggregator(c.Sources, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	gw := gateway.New(st, agg, log)
	sess := session.New(gw, annotate.New(gw, log), log)
	return &app{store: st, gateway: gw, session: sess}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newAggregator builds the enabled source adapters around one HTTP client.
func newAggregator(c types.SourcesConfig, log *zap.Logger) (*ingest.Aggregator, error) {
	client := &http.Client{Timeout: c.HTTP.Timeout}

	var adapters []ingest.Adapter
	if c.Arxiv.Enabled {
		adapters = append(adapters, ingest.NewArxivAdapter(c, client, log))
	}
	if c.GitHub.Enabled {
		gh, err := ingest.NewGitHubAdapter(c, client, log)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub source: %w", err)
		}
		adapters = append(adapters, gh)
	}
	if len(adapters) == 0 {
		log.Warn("every source is disabled; only fallback data will be shown")
	}
	return ingest.NewAggregator(log, adapters...), nil
}
