// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"sort"

	"github.com/pdiddy/research-radar/pkg/types"
)

// topTagLimit caps Stats.TopTags.
const topTagLimit = 10

// TagCount is a tag and the number of entities carrying it.
type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// Stats summarizes a library for the dashboard.
type Stats struct {
	Total      int                      `json:"total" yaml:"total"`
	BySource   map[types.SourceKind]int `json:"by_source" yaml:"by_source"`
	Starred    int                      `json:"starred" yaml:"starred"`
	Read       int                      `json:"read" yaml:"read"`
	Interested int                      `json:"interested" yaml:"interested"`

	// RelevanceHistogram[i] counts entities with RelevanceScore i.
	RelevanceHistogram [types.MaxRelevanceScore + 1]int `json:"relevance_histogram" yaml:"relevance_histogram"`

	TopTags []TagCount `json:"top_tags" yaml:"top_tags"`

	// Scored counts entities the user has rated; AverageUserScore is 0
	// when none are rated.
	Scored           int     `json:"scored" yaml:"scored"`
	AverageUserScore float64 `json:"average_user_score" yaml:"average_user_score"`
}

// Summarize computes Stats over entities.
func Summarize(entities []types.ResearchEntity) Stats {
	s := Stats{
		Total:    len(entities),
		BySource: map[types.SourceKind]int{types.SourceArxiv: 0, types.SourceGitHub: 0},
		TopTags:  []TagCount{},
	}

	tagCounts := make(map[string]int)
	scoreSum := 0
	for _, e := range entities {
		s.BySource[e.Source]++
		if e.IsStarred {
			s.Starred++
		}
		if e.IsRead {
			s.Read++
		}
		if e.IsInterested {
			s.Interested++
		}
		if e.RelevanceScore >= types.MinRelevanceScore && e.RelevanceScore <= types.MaxRelevanceScore {
			s.RelevanceHistogram[e.RelevanceScore]++
		}
		for _, t := range e.Tags {
			tagCounts[t]++
		}
		if e.UserScore != nil {
			s.Scored++
			scoreSum += *e.UserScore
		}
	}

	if s.Scored > 0 {
		s.AverageUserScore = float64(scoreSum) / float64(s.Scored)
	}

	for tag, n := range tagCounts {
		s.TopTags = append(s.TopTags, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(s.TopTags, func(i, j int) bool {
		if s.TopTags[i].Count != s.TopTags[j].Count {
			return s.TopTags[i].Count > s.TopTags[j].Count
		}
		return s.TopTags[i].Tag < s.TopTags[j].Tag
	})
	if len(s.TopTags) > topTagLimit {
		s.TopTags = s.TopTags[:topTagLimit]
	}
	return s
}
