// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-radar/internal/annotate"
	"github.com/pdiddy/research-radar/internal/gateway"
	"github.com/pdiddy/research-radar/internal/store"
	"github.com/pdiddy/research-radar/pkg/types"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type staticFetcher []types.ResearchEntity

func (f staticFetcher) Fetch(context.Context) []types.ResearchEntity {
	out := make([]types.ResearchEntity, len(f))
	for i, e := range f {
		out[i] = e.Clone()
	}
	return out
}

func library() staticFetcher {
	return staticFetcher{
		{ID: "arxiv-1", Title: "Agents at scale", Authors: []string{"a"}, Date: fixedNow.Add(-24 * time.Hour), Source: types.SourceArxiv, RelevanceScore: 9, Tags: []string{"agent"}},
		{ID: "arxiv-2", Title: "Old paper", Authors: []string{"b"}, Date: fixedNow.AddDate(0, 0, -10), Source: types.SourceArxiv, RelevanceScore: 7, Tags: []string{}},
		{ID: "github-3", Title: "llm-kit", Authors: []string{"GitHub: x/llm-kit"}, Date: fixedNow.Add(-2 * time.Hour), Source: types.SourceGitHub, RelevanceScore: 6, Tags: []string{"llm"}},
	}
}

// newSession wires a real gateway, mutator and SQLite store.
func newSession(t *testing.T, f gateway.Fetcher) *Session {
	t.Helper()
	st, err := store.Open(context.Background(), types.StoreConfig{Path: filepath.Join(t.TempDir(), "research.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := func() time.Time { return fixedNow }
	gw := gateway.New(st, f, nil, gateway.WithClock(clock))
	return New(gw, annotate.New(gw, nil), nil, WithClock(clock))
}

func itemIDs(s Snapshot) []string {
	out := []string{}
	for _, e := range s.Items {
		out = append(out, e.ID)
	}
	return out
}

func TestLoadAppliesDefaultCriteria(t *testing.T) {
	s := newSession(t, library())
	snap := s.Load(context.Background())

	assert.Equal(t, []string{"github-3", "arxiv-1"}, itemIDs(snap), "ten-day-old paper is outside the default window")
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, types.DefaultCriteria(), snap.Criteria)
	assert.Empty(t, snap.Notice)
}

func TestUpdateAndResetFilters(t *testing.T) {
	s := newSession(t, library())
	s.Load(context.Background())

	days := 30
	source := types.SourceFilter("arxiv")
	snap, err := s.UpdateFilters(types.CriteriaPatch{DateRangeDays: &days, Source: &source})
	require.NoError(t, err)
	assert.Equal(t, []string{"arxiv-1", "arxiv-2"}, itemIDs(snap))
	assert.Equal(t, types.ReadAll, snap.Criteria.ReadStatus, "unpatched fields keep their value")

	bad := 11
	_, err = s.UpdateFilters(types.CriteriaPatch{MinRelevance: &bad})
	assert.ErrorIs(t, err, types.ErrInvalidCriteria)
	assert.Equal(t, 30, s.Criteria().DateRangeDays, "rejected patch leaves criteria unchanged")

	snap = s.ResetFilters()
	assert.Equal(t, types.DefaultCriteria(), snap.Criteria)
	assert.Len(t, snap.Items, 2)
}

func TestToggleStarTwice(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, library())
	s.Load(ctx)

	snap, err := s.ToggleStar(ctx, "arxiv-1")
	require.NoError(t, err)
	starred := types.StarStarred
	snap, err = s.UpdateFilters(types.CriteriaPatch{StarStatus: &starred})
	require.NoError(t, err)
	assert.Equal(t, []string{"arxiv-1"}, itemIDs(snap))

	snap, err = s.ToggleStar(ctx, "arxiv-1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	e, ok := s.Entity("arxiv-1")
	require.True(t, ok)
	assert.False(t, e.IsStarred)
}

func TestSetUserScore(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, library())
	s.Load(ctx)

	_, err := s.SetUserScore(ctx, "github-3", 4)
	require.NoError(t, err)
	e, _ := s.Entity("github-3")
	require.NotNil(t, e.UserScore)
	assert.Equal(t, 4, *e.UserScore)

	_, err = s.SetUserScore(ctx, "github-3", 9)
	assert.ErrorIs(t, err, annotate.ErrInvalidScore)
	assert.Empty(t, s.View().Notice, "a rejected score is not a save failure")
	e, _ = s.Entity("github-3")
	assert.Equal(t, 4, *e.UserScore)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Scored)
	assert.Equal(t, 3, stats.Total)
}

func TestRefreshDataResetsAnnotations(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, library())
	s.Load(ctx)
	_, err := s.ToggleRead(ctx, "github-3")
	require.NoError(t, err)

	snap, summary := s.RefreshData(ctx)
	assert.Equal(t, 3, summary.Inserted)
	assert.False(t, summary.Fallback)
	assert.Empty(t, snap.Notice)

	e, _ := s.Entity("github-3")
	assert.False(t, e.IsRead)
}

func TestLoadFallsBackWhenSourcesEmpty(t *testing.T) {
	s := newSession(t, staticFetcher{})
	snap := s.Load(context.Background())
	require.Len(t, snap.Items, 2)
	for _, e := range snap.Items {
		assert.Contains(t, e.Tags, "fallback")
	}

	snap, summary := s.RefreshData(context.Background())
	assert.True(t, summary.Fallback)
	assert.Equal(t, NoticeFallback, snap.Notice)
}

type brokenLibrary struct{}

func (brokenLibrary) LoadAll(context.Context) ([]types.ResearchEntity, error) {
	return []types.ResearchEntity{}, fmt.Errorf("%w: disk gone", gateway.ErrStoreUnavailable)
}

func (brokenLibrary) Refresh(context.Context) ([]types.ResearchEntity, gateway.IngestSummary, error) {
	return []types.ResearchEntity{{ID: "arxiv-9", Date: fixedNow, Source: types.SourceArxiv}},
		gateway.IngestSummary{Fetched: 1, Failed: 1}, errors.New("wipe failed")
}

func TestLoadReadFailureShowsFallbackWithNotice(t *testing.T) {
	s := New(brokenLibrary{}, nil, nil, WithClock(func() time.Time { return fixedNow }))
	snap := s.Load(context.Background())
	assert.Equal(t, NoticeStoreUnavailable, snap.Notice)
	assert.Len(t, snap.Items, 2)

	snap, _ = s.RefreshData(context.Background())
	assert.Equal(t, NoticeRefreshWipe, snap.Notice)
	assert.Equal(t, []string{"arxiv-9"}, itemIDs(snap))
}

func TestSubscribeReceivesChanges(t *testing.T) {
	s := newSession(t, library())
	ch, cancel := s.Subscribe()

	initial := <-ch
	assert.Empty(t, initial.Items)

	s.Load(context.Background())
	loaded := <-ch
	assert.Len(t, loaded.Items, 2)

	s.ResetFilters()
	s.ResetFilters()
	latest := <-ch
	assert.Equal(t, types.DefaultCriteria(), latest.Criteria)
	select {
	case <-ch:
		t.Fatal("slow subscriber should only hold the latest snapshot")
	default:
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, library())
	s.Load(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = s.ToggleInterest(ctx, "arxiv-1")
				return
			}
			_ = s.View()
			_ = s.Stats()
		}(i)
	}
	wg.Wait()

	_, ok := s.Entity("arxiv-1")
	assert.True(t, ok)
	assert.Equal(t, 3, s.View().Total)
}

type failingAnnotator struct{ err error }

func (a failingAnnotator) ToggleStar(context.Context, string) ([]types.ResearchEntity, error) {
	return nil, a.err
}

func (a failingAnnotator) ToggleInterest(context.Context, string) ([]types.ResearchEntity, error) {
	return nil, a.err
}

func (a failingAnnotator) ToggleRead(context.Context, string) ([]types.ResearchEntity, error) {
	return nil, a.err
}

func (a failingAnnotator) SetUserScore(context.Context, string, int) ([]types.ResearchEntity, error) {
	return nil, a.err
}

func TestWriteFailureKeepsLibraryAndSetsNotice(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, types.StoreConfig{Path: filepath.Join(t.TempDir(), "research.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := func() time.Time { return fixedNow }
	gw := gateway.New(st, library(), nil, gateway.WithClock(clock))
	s := New(gw, failingAnnotator{err: errors.New("disk full")}, nil, WithClock(clock))
	s.Load(ctx)

	snap, err := s.ToggleStar(ctx, "arxiv-1")
	require.Error(t, err)
	assert.Contains(t, snap.Notice, "Could not save change")
	assert.Contains(t, snap.Notice, "disk full")
	assert.Equal(t, 3, snap.Total, "the loaded library is kept")
}
