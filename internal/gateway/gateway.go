// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway mediates between the ingestion pipeline and the store. It
// loads the persisted library, populates an empty store from the sources
// (or the fallback set), applies partial updates, and refreshes on demand.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/fallback"
	"github.com/pdiddy/research-radar/internal/ingest"
	"github.com/pdiddy/research-radar/internal/store"
	"github.com/pdiddy/research-radar/pkg/types"
)

// ErrStoreUnavailable reports that the store could not be read. LoadAll
// still returns a usable (empty) slice alongside it.
var ErrStoreUnavailable = errors.New("stored library unavailable")

// Fetcher produces freshly ingested entities. *ingest.Aggregator satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) []types.ResearchEntity
}

// IngestSummary holds counts from one populate run.
type IngestSummary struct {
	Fetched  int  `json:"fetched"`
	Inserted int  `json:"inserted"`
	Existing int  `json:"existing"`
	Failed   int  `json:"failed"`
	Fallback bool `json:"fallback"`
}

// Gateway is the persistence gateway.
type Gateway struct {
	store    store.Store
	fetcher  Fetcher
	log      *zap.Logger
	now      func() time.Time
	fallback func(now time.Time) []types.ResearchEntity
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock overrides the clock used to date the fallback set.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New returns a Gateway over st that populates from f.
func New(st store.Store, f Fetcher, log *zap.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		store:    st,
		fetcher:  f,
		log:      log.With(zap.String("component", "gateway")),
		now:      time.Now,
		fallback: fallback.Set,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LoadAll returns the stored library newest first. An empty store is
// populated first. When the store cannot be read, LoadAll returns an empty
// slice and an error wrapping ErrStoreUnavailable.
func (g *Gateway) LoadAll(ctx context.Context) ([]types.ResearchEntity, error) {
	entities, err := g.store.List(ctx)
	if err != nil {
		g.log.Error("reading stored library failed", zap.Error(err))
		return []types.ResearchEntity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(entities) > 0 {
		return entities, nil
	}

	g.log.Info("store is empty, populating from sources")
	populated, _ := g.Populate(ctx)
	return populated, nil
}

// Populate fetches from every source, substitutes the fallback set when
// nothing came back, and inserts each entity. Insert failures are logged and
// skipped. The fetched set is returned whether or not it was persisted.
func (g *Gateway) Populate(ctx context.Context) ([]types.ResearchEntity, IngestSummary) {
	var summary IngestSummary

	items := g.fetcher.Fetch(ctx)
	if len(items) == 0 {
		g.log.Warn("no items from any source, using fallback set")
		items = g.fallback(g.now())
		ingest.SortByDate(items)
		summary.Fallback = true
	}
	summary.Fetched = len(items)

	for _, e := range items {
		inserted, err := g.store.Insert(ctx, e)
		switch {
		case err != nil:
			g.log.Error("storing entity failed", zap.String("id", e.ID), zap.Error(err))
			summary.Failed++
		case inserted:
			summary.Inserted++
		default:
			g.log.Debug("entity already stored", zap.String("id", e.ID))
			summary.Existing++
		}
	}

	g.log.Info("populate complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("inserted", summary.Inserted),
		zap.Int("existing", summary.Existing),
		zap.Int("failed", summary.Failed),
		zap.Bool("fallback", summary.Fallback))
	return items, summary
}

// Insert stores e unless an entity with the same ID is already stored.
func (g *Gateway) Insert(ctx context.Context, e types.ResearchEntity) error {
	if _, err := g.store.Insert(ctx, e); err != nil {
		g.log.Error("storing entity failed", zap.String("id", e.ID), zap.Error(err))
		return err
	}
	return nil
}

// Get returns the stored entity with id. Read failures are logged and
// reported as absent.
func (g *Gateway) Get(ctx context.Context, id string) (types.ResearchEntity, bool) {
	e, err := g.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			g.log.Error("reading entity failed", zap.String("id", id), zap.Error(err))
		}
		return types.ResearchEntity{}, false
	}
	return e, true
}

// ApplyUpdate merges upd into the stored entity. An unknown id is a no-op.
func (g *Gateway) ApplyUpdate(ctx context.Context, id string, upd types.EntityUpdate) error {
	if upd.IsEmpty() {
		return nil
	}
	if _, err := g.store.Update(ctx, id, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.log.Debug("update of unknown entity ignored", zap.String("id", id))
			return nil
		}
		g.log.Error("updating entity failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("updating %s: %w", id, err)
	}
	return nil
}

// WipeAll deletes every stored entity.
func (g *Gateway) WipeAll(ctx context.Context) error {
	n, err := g.store.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("wiping store: %w", err)
	}
	g.log.Info("store wiped", zap.Int64("deleted", n))
	return nil
}

// Refresh wipes the store and populates it again. A wipe failure is logged
// and returned, but population still runs.
func (g *Gateway) Refresh(ctx context.Context) ([]types.ResearchEntity, IngestSummary, error) {
	wipeErr := g.WipeAll(ctx)
	if wipeErr != nil {
		g.log.Error("refresh could not wipe store", zap.Error(wipeErr))
	}
	items, summary := g.Populate(ctx)
	return items, summary, wipeErr
}
