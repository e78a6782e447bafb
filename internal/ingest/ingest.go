// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest pulls research items from upstream sources (arXiv, GitHub),
// normalizes them into types.ResearchEntity, and aggregates the results.
package ingest

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-radar/pkg/types"
)

// Adapter converts one upstream source into normalized entities. Fetch never
// fails: upstream and parse errors are logged and yield an empty slice.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) []types.ResearchEntity
}

// Aggregator fans out to every adapter and merges the results.
type Aggregator struct {
	adapters []Adapter
	log      *zap.Logger
}

// NewAggregator returns an Aggregator over adapters.
func NewAggregator(log *zap.Logger, adapters ...Adapter) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{adapters: adapters, log: log.With(zap.String("component", "aggregator"))}
}

// Fetch runs all adapters concurrently, waits for every one of them to
// settle, drops duplicate IDs (first wins), and sorts newest first. It returns
// an empty slice when every adapter comes back empty.
func (a *Aggregator) Fetch(ctx context.Context) []types.ResearchEntity {
	batches := make([][]types.ResearchEntity, len(a.adapters))

	var g errgroup.Group
	for i, ad := range a.adapters {
		g.Go(func() error {
			start := time.Now()
			batches[i] = ad.Fetch(ctx)
			a.log.Debug("adapter settled",
				zap.String("adapter", ad.Name()),
				zap.Int("items", len(batches[i])),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	all := []types.ResearchEntity{}
	for i, batch := range batches {
		for _, e := range batch {
			if seen[e.ID] {
				a.log.Warn("duplicate entity dropped",
					zap.String("adapter", a.adapters[i].Name()), zap.String("id", e.ID))
				continue
			}
			seen[e.ID] = true
			all = append(all, e)
		}
	}

	SortByDate(all)
	a.log.Info("aggregation complete", zap.Int("items", len(all)), zap.Int("adapters", len(a.adapters)))
	return all
}

// SortByDate orders entities newest first; equal dates fall back to ID so the
// order is deterministic.
func SortByDate(entities []types.ResearchEntity) {
	sort.SliceStable(entities, func(i, j int) bool {
		if !entities[i].Date.Equal(entities[j].Date) {
			return entities[i].Date.After(entities[j].Date)
		}
		return entities[i].ID < entities[j].ID
	})
}

// normalizeText collapses runs of whitespace and trims the result.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// containsAny reports whether any of the (already lowercased) fields contains term.
func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

// appendKeywordTags adds each keyword found in any field that is not already
// a tag. Fields must be lowercased by the caller.
func appendKeywordTags(tags, keywords []string, fields ...string) []string {
	for _, kw := range keywords {
		if containsAny(kw, fields...) && !contains(tags, kw) {
			tags = append(tags, kw)
		}
	}
	return tags
}

// finalizeTags lowercases, trims, and deduplicates tags in first-seen order
// and keeps at most types.MaxTags.
func finalizeTags(tags []string) []string {
	out := make([]string, 0, types.MaxTags)
	for _, t := range tags {
		t = normalizeText(strings.ToLower(t))
		if t == "" || contains(out, t) {
			continue
		}
		out = append(out, t)
		if len(out) == types.MaxTags {
			break
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// roundScore rounds half up and clamps to the relevance bounds.
func roundScore(score float64) int {
	r := int(math.Floor(score + 0.5))
	if r > types.MaxRelevanceScore {
		return types.MaxRelevanceScore
	}
	if r < types.MinRelevanceScore {
		return types.MinRelevanceScore
	}
	return r
}

// parseTimestamp parses an RFC 3339 upstream timestamp into UTC. On failure
// it substitutes now and logs the anomaly.
func parseTimestamp(log *zap.Logger, id, raw string, now time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		log.Warn("unparseable date, using ingestion time",
			zap.String("id", id), zap.String("raw", raw), zap.Error(err))
		return now.UTC()
	}
	return t.UTC()
}
