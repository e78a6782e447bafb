// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate applies user annotations (star, interest, read, score) to
// stored entities and returns the re-read library.
package annotate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/pkg/types"
)

// ErrInvalidScore is returned when a user score is outside 1..5.
var ErrInvalidScore = errors.New("user score out of range")

// Gateway is the subset of the persistence gateway the mutator needs.
type Gateway interface {
	Get(ctx context.Context, id string) (types.ResearchEntity, bool)
	ApplyUpdate(ctx context.Context, id string, upd types.EntityUpdate) error
	LoadAll(ctx context.Context) ([]types.ResearchEntity, error)
}

// Mutator turns annotation intents into partial updates.
type Mutator struct {
	gw  Gateway
	log *zap.Logger
}

// New returns a Mutator writing through gw.
func New(gw Gateway, log *zap.Logger) *Mutator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mutator{gw: gw, log: log.With(zap.String("component", "annotate"))}
}

// ToggleStar flips the starred flag of id.
func (m *Mutator) ToggleStar(ctx context.Context, id string) ([]types.ResearchEntity, error) {
	return m.toggle(ctx, id, "star", func(e types.ResearchEntity) types.EntityUpdate {
		v := !e.IsStarred
		return types.EntityUpdate{IsStarred: &v}
	})
}

// ToggleInterest flips the interested flag of id.
func (m *Mutator) ToggleInterest(ctx context.Context, id string) ([]types.ResearchEntity, error) {
	return m.toggle(ctx, id, "interest", func(e types.ResearchEntity) types.EntityUpdate {
		v := !e.IsInterested
		return types.EntityUpdate{IsInterested: &v}
	})
}

// ToggleRead flips the read flag of id.
func (m *Mutator) ToggleRead(ctx context.Context, id string) ([]types.ResearchEntity, error) {
	return m.toggle(ctx, id, "read", func(e types.ResearchEntity) types.EntityUpdate {
		v := !e.IsRead
		return types.EntityUpdate{IsRead: &v}
	})
}

// SetUserScore records a 1..5 rating for id. Out-of-range scores are
// rejected before anything is written.
func (m *Mutator) SetUserScore(ctx context.Context, id string, score int) ([]types.ResearchEntity, error) {
	if score < types.MinUserScore || score > types.MaxUserScore {
		return nil, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidScore, score, types.MinUserScore, types.MaxUserScore)
	}
	return m.toggle(ctx, id, "score", func(types.ResearchEntity) types.EntityUpdate {
		return types.EntityUpdate{UserScore: &score}
	})
}

// toggle reads the current entity, writes exactly one update computed from
// it, and re-reads the whole library. An unknown id writes nothing.
func (m *Mutator) toggle(ctx context.Context, id, action string, next func(types.ResearchEntity) types.EntityUpdate) ([]types.ResearchEntity, error) {
	current, ok := m.gw.Get(ctx, id)
	if !ok {
		m.log.Debug("annotation of unknown entity ignored", zap.String("id", id), zap.String("action", action))
		return m.gw.LoadAll(ctx)
	}

	if err := m.gw.ApplyUpdate(ctx, id, next(current)); err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, id, err)
	}
	m.log.Debug("annotation applied", zap.String("id", id), zap.String("action", action))
	return m.gw.LoadAll(ctx)
}
