// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-radar/pkg/types"
)

// fakeGateway records every write.
type fakeGateway struct {
	rows     map[string]types.ResearchEntity
	writes   []types.EntityUpdate
	loads    int
	writeErr error
}

func newFakeGateway(entities ...types.ResearchEntity) *fakeGateway {
	g := &fakeGateway{rows: map[string]types.ResearchEntity{}}
	for _, e := range entities {
		g.rows[e.ID] = e
	}
	return g
}

func (g *fakeGateway) Get(_ context.Context, id string) (types.ResearchEntity, bool) {
	e, ok := g.rows[id]
	return e, ok
}

func (g *fakeGateway) ApplyUpdate(_ context.Context, id string, upd types.EntityUpdate) error {
	g.writes = append(g.writes, upd)
	if g.writeErr != nil {
		return g.writeErr
	}
	if e, ok := g.rows[id]; ok {
		g.rows[id] = upd.ApplyTo(e)
	}
	return nil
}

func (g *fakeGateway) LoadAll(context.Context) ([]types.ResearchEntity, error) {
	g.loads++
	out := []types.ResearchEntity{}
	for _, e := range g.rows {
		out = append(out, e)
	}
	return out, nil
}

func TestToggleStarTwiceRestoresAndWritesTwice(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway(types.ResearchEntity{ID: "arxiv-1"})
	m := New(gw, nil)

	got, err := m.ToggleStar(ctx, "arxiv-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsStarred)

	got, err = m.ToggleStar(ctx, "arxiv-1")
	require.NoError(t, err)
	assert.False(t, got[0].IsStarred)

	require.Len(t, gw.writes, 2)
	assert.True(t, *gw.writes[0].IsStarred)
	assert.False(t, *gw.writes[1].IsStarred)
	assert.Equal(t, 2, gw.loads)
}

func TestToggleInterestAndRead(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway(types.ResearchEntity{ID: "github-1", IsInterested: true})
	m := New(gw, nil)

	_, err := m.ToggleInterest(ctx, "github-1")
	require.NoError(t, err)
	_, err = m.ToggleRead(ctx, "github-1")
	require.NoError(t, err)

	e := gw.rows["github-1"]
	assert.False(t, e.IsInterested)
	assert.True(t, e.IsRead)
	assert.False(t, e.IsStarred)

	require.Len(t, gw.writes, 2)
	assert.Nil(t, gw.writes[0].IsRead, "each write carries only its own field")
	assert.Nil(t, gw.writes[1].IsInterested)
}

func TestSetUserScore(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway(types.ResearchEntity{ID: "arxiv-1"})
	m := New(gw, nil)

	_, err := m.SetUserScore(ctx, "arxiv-1", 5)
	require.NoError(t, err)
	require.NotNil(t, gw.rows["arxiv-1"].UserScore)
	assert.Equal(t, 5, *gw.rows["arxiv-1"].UserScore)

	for _, bad := range []int{0, 6, -1} {
		_, err := m.SetUserScore(ctx, "arxiv-1", bad)
		assert.ErrorIs(t, err, ErrInvalidScore)
	}
	assert.Len(t, gw.writes, 1, "invalid scores are never written")
}

func TestUnknownIDWritesNothing(t *testing.T) {
	gw := newFakeGateway(types.ResearchEntity{ID: "arxiv-1"})
	m := New(gw, nil)

	got, err := m.ToggleRead(context.Background(), "missing")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Empty(t, gw.writes)
}

func TestWriteFailureIsReturned(t *testing.T) {
	gw := newFakeGateway(types.ResearchEntity{ID: "arxiv-1"})
	gw.writeErr = errors.New("read-only")
	m := New(gw, nil)

	_, err := m.ToggleStar(context.Background(), "arxiv-1")
	assert.ErrorIs(t, err, gw.writeErr)
	assert.Zero(t, gw.loads)
}
