// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package view derives the filtered, ordered list the user sees from the
// full entity set and a FilterCriteria value. Everything here is pure.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/research-radar/pkg/types"
)

// predicate is one filter stage. Stages that a criteria value disables are
// never built.
type predicate func(types.ResearchEntity) bool

// Apply returns the entities that satisfy every active stage of c, ordered
// by date descending (millisecond precision), then relevance descending,
// then ID. The input slice is not modified.
func Apply(entities []types.ResearchEntity, c types.FilterCriteria, now time.Time) []types.ResearchEntity {
	stages := predicates(c, now)

	out := make([]types.ResearchEntity, 0, len(entities))
	for _, e := range entities {
		if matchesAll(e, stages) {
			out = append(out, e)
		}
	}
	Sort(out)
	return out
}

// Sort orders entities in place using the view ordering.
func Sort(entities []types.ResearchEntity) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if am, bm := a.Date.UnixMilli(), b.Date.UnixMilli(); am != bm {
			return am > bm
		}
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		return a.ID < b.ID
	})
}

func matchesAll(e types.ResearchEntity, stages []predicate) bool {
	for _, p := range stages {
		if !p(e) {
			return false
		}
	}
	return true
}

// predicates builds the active stages in their fixed order: source,
// relevance, date window, read, star, interest, text search.
func predicates(c types.FilterCriteria, now time.Time) []predicate {
	var stages []predicate

	if c.Source != "" && c.Source != types.SourceFilterAll {
		source := types.SourceKind(c.Source)
		stages = append(stages, func(e types.ResearchEntity) bool { return e.Source == source })
	}

	if c.MinRelevance > 0 {
		minScore := c.MinRelevance
		stages = append(stages, func(e types.ResearchEntity) bool { return e.RelevanceScore >= minScore })
	}

	if c.DateRangeDays > 0 {
		cutoff := now.AddDate(0, 0, -c.DateRangeDays)
		stages = append(stages, func(e types.ResearchEntity) bool { return !e.Date.Before(cutoff) })
	}

	switch c.ReadStatus {
	case types.ReadOnly:
		stages = append(stages, func(e types.ResearchEntity) bool { return e.IsRead })
	case types.ReadUnread:
		stages = append(stages, func(e types.ResearchEntity) bool { return !e.IsRead })
	}

	switch c.StarStatus {
	case types.StarStarred:
		stages = append(stages, func(e types.ResearchEntity) bool { return e.IsStarred })
	case types.StarUnstarred:
		stages = append(stages, func(e types.ResearchEntity) bool { return !e.IsStarred })
	}

	switch c.InterestStatus {
	case types.InterestInterested:
		stages = append(stages, func(e types.ResearchEntity) bool { return e.IsInterested })
	case types.InterestNotInterested:
		stages = append(stages, func(e types.ResearchEntity) bool { return !e.IsInterested })
	}

	if q := strings.ToLower(strings.TrimSpace(c.SearchQuery)); q != "" {
		stages = append(stages, func(e types.ResearchEntity) bool { return matchesText(e, q) })
	}

	return stages
}

// matchesText reports whether the lowercased query occurs in the title,
// description, any tag, or any author.
func matchesText(e types.ResearchEntity, q string) bool {
	if strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Description), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, a := range e.Authors {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}
