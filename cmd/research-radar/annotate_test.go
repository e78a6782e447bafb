// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/gateway"
	"github.com/pdiddy/research-radar/internal/session"
	"github.com/pdiddy/research-radar/pkg/types"
)

type unreadableLibrary struct{}

func (unreadableLibrary) LoadAll(context.Context) ([]types.ResearchEntity, error) {
	return []types.ResearchEntity{}, fmt.Errorf("%w: disk I/O error", gateway.ErrStoreUnavailable)
}

func (unreadableLibrary) Refresh(context.Context) ([]types.ResearchEntity, gateway.IngestSummary, error) {
	return nil, gateway.IngestSummary{}, nil
}

func star(ctx context.Context, s *session.Session) error {
	_, err := s.ToggleStar(ctx, "github-12345")
	return err
}

// offlineApp wires a real SQLite library with every source disabled, so it
// is populated with the fallback set.
func offlineApp(t *testing.T) *app {
	t.Helper()
	c := types.Config{Store: types.StoreConfig{
		Driver: types.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "research.db"),
	}}
	a, err := newApp(context.Background(), c, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApplyAnnotation(t *testing.T) {
	a := offlineApp(t)
	var buf bytes.Buffer
	require.NoError(t, applyAnnotation(context.Background(), &buf, a.session, "github-12345", star))
	assert.Equal(t, "github-12345  starred=true interested=true read=false score=-\n", buf.String())

	stored, ok := a.gateway.Get(context.Background(), "github-12345")
	require.True(t, ok)
	assert.True(t, stored.IsStarred)
}

func TestApplyAnnotationUnknownID(t *testing.T) {
	a := offlineApp(t)
	err := applyAnnotation(context.Background(), &bytes.Buffer{}, a.session, "github-0", star)
	assert.ErrorContains(t, err, `no item with id "github-0"`)
}

func TestApplyAnnotationStoreUnavailable(t *testing.T) {
	s := session.New(unreadableLibrary{}, nil, nil)
	called := false
	var buf bytes.Buffer

	err := applyAnnotation(context.Background(), &buf, s, "github-12345", func(context.Context, *session.Session) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "store is unavailable")
	assert.False(t, called, "nothing is written to the sample data")
	assert.Empty(t, buf.String())
}
