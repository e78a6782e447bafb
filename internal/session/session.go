// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the user-facing state: the current filter criteria,
// the last loaded library, and a notice for degraded conditions. Every
// change recomputes the view and is pushed to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/annotate"
	"github.com/pdiddy/research-radar/internal/fallback"
	"github.com/pdiddy/research-radar/internal/gateway"
	"github.com/pdiddy/research-radar/internal/view"
	"github.com/pdiddy/research-radar/pkg/types"
)

// Notices shown alongside the view.
const (
	NoticeStoreUnavailable = "Stored library is unavailable; showing sample data."
	NoticeFallback         = "Sources could not be reached; showing sample data."
	NoticeRefreshWipe      = "Refresh could not clear stored items; showing freshly fetched data."
	noticeWriteFailed      = "Could not save change"
)

// Library is the subset of the persistence gateway the session uses.
type Library interface {
	LoadAll(ctx context.Context) ([]types.ResearchEntity, error)
	Refresh(ctx context.Context) ([]types.ResearchEntity, gateway.IngestSummary, error)
}

// Annotator applies annotations and returns the re-read library.
type Annotator interface {
	ToggleStar(ctx context.Context, id string) ([]types.ResearchEntity, error)
	ToggleInterest(ctx context.Context, id string) ([]types.ResearchEntity, error)
	ToggleRead(ctx context.Context, id string) ([]types.ResearchEntity, error)
	SetUserScore(ctx context.Context, id string, score int) ([]types.ResearchEntity, error)
}

// Snapshot is one rendering of the session.
type Snapshot struct {
	Items    []types.ResearchEntity `json:"items"`
	Criteria types.FilterCriteria   `json:"criteria"`
	Notice   string                 `json:"notice,omitempty"`

	// Total is the size of the unfiltered library.
	Total int `json:"total"`
}

// Session is safe for concurrent use.
type Session struct {
	lib Library
	ann Annotator
	log *zap.Logger
	now func() time.Time

	mu       sync.Mutex
	criteria types.FilterCriteria
	entities []types.ResearchEntity
	notice   string
	subs     map[int]chan Snapshot
	nextSub  int
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the clock used for the date window.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithCriteria sets the starting criteria instead of the defaults.
func WithCriteria(c types.FilterCriteria) Option {
	return func(s *Session) { s.criteria = c }
}

// New returns a session with default criteria and an empty library.
func New(lib Library, ann Annotator, log *zap.Logger, opts ...Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		lib:      lib,
		ann:      ann,
		log:      log.With(zap.String("component", "session")),
		now:      time.Now,
		criteria: types.DefaultCriteria(),
		entities: []types.ResearchEntity{},
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the library through the gateway.
func (s *Session) Load(ctx context.Context) Snapshot {
	entities, err := s.lib.LoadAll(ctx)
	return s.replace(entities, err)
}

// View returns the current snapshot without touching storage.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Criteria returns the current criteria.
func (s *Session) Criteria() types.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Entity returns the loaded entity with id.
func (s *Session) Entity(id string) (types.ResearchEntity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entities {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return types.ResearchEntity{}, false
}

// UpdateFilters merges patch into the criteria. Invalid results are
// rejected and leave the criteria unchanged.
func (s *Session) UpdateFilters(patch types.CriteriaPatch) (Snapshot, error) {
	s.mu.Lock()
	next := s.criteria.Merge(patch)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	s.criteria = next
	snap := s.snapshotLocked()
	s.publishLocked(snap)
	s.mu.Unlock()

	s.log.Debug("filters updated", zap.Any("criteria", next))
	return snap, nil
}

// ResetFilters restores the default criteria.
func (s *Session) ResetFilters() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = types.DefaultCriteria()
	snap := s.snapshotLocked()
	s.publishLocked(snap)
	return snap
}

// RefreshData wipes the store and ingests everything again.
func (s *Session) RefreshData(ctx context.Context) (Snapshot, gateway.IngestSummary) {
	entities, summary, err := s.lib.Refresh(ctx)

	notice := ""
	switch {
	case err != nil:
		s.log.Warn("refresh degraded", zap.Error(err))
		notice = NoticeRefreshWipe
	case summary.Fallback:
		notice = NoticeFallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = entities
	s.notice = notice
	snap := s.snapshotLocked()
	s.publishLocked(snap)
	return snap, summary
}

// ToggleStar flips the starred flag of id.
func (s *Session) ToggleStar(ctx context.Context, id string) (Snapshot, error) {
	entities, err := s.ann.ToggleStar(ctx, id)
	return s.afterMutation(entities, err)
}

// ToggleInterest flips the interested flag of id.
func (s *Session) ToggleInterest(ctx context.Context, id string) (Snapshot, error) {
	entities, err := s.ann.ToggleInterest(ctx, id)
	return s.afterMutation(entities, err)
}

// ToggleRead flips the read flag of id.
func (s *Session) ToggleRead(ctx context.Context, id string) (Snapshot, error) {
	entities, err := s.ann.ToggleRead(ctx, id)
	return s.afterMutation(entities, err)
}

// SetUserScore rates id from 1 to 5.
func (s *Session) SetUserScore(ctx context.Context, id string, score int) (Snapshot, error) {
	entities, err := s.ann.SetUserScore(ctx, id, score)
	return s.afterMutation(entities, err)
}

// Stats summarizes the whole loaded library, ignoring the criteria.
func (s *Session) Stats() view.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Summarize(s.entities)
}

// Subscribe returns a channel that receives every new snapshot, starting
// with the current one, and a function that ends the subscription. Slow
// receivers only see the latest snapshot.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Session) afterMutation(entities []types.ResearchEntity, err error) (Snapshot, error) {
	if errors.Is(err, annotate.ErrInvalidScore) {
		return s.View(), err
	}
	if err != nil && !errors.Is(err, gateway.ErrStoreUnavailable) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.notice = fmt.Sprintf("%s: %v", noticeWriteFailed, err)
		snap := s.snapshotLocked()
		s.publishLocked(snap)
		return snap, err
	}
	return s.replace(entities, err), nil
}

// replace installs a freshly loaded library. A read failure keeps the
// library usable by substituting the fallback set.
func (s *Session) replace(entities []types.ResearchEntity, err error) Snapshot {
	notice := ""
	if err != nil {
		s.log.Warn("library load degraded", zap.Error(err))
		notice = NoticeStoreUnavailable
		if len(entities) == 0 {
			entities = fallback.Set(s.now())
		}
	}
	if entities == nil {
		entities = []types.ResearchEntity{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = entities
	s.notice = notice
	snap := s.snapshotLocked()
	s.publishLocked(snap)
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    view.Apply(s.entities, s.criteria, s.now()),
		Criteria: s.criteria,
		Notice:   s.notice,
		Total:    len(s.entities),
	}
}

// publishLocked replaces any unread snapshot in each subscriber channel.
func (s *Session) publishLocked(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
