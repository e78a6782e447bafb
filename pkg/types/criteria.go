// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidCriteria is returned by FilterCriteria.Validate.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// SourceFilter selects entities by source; SourceFilterAll disables the stage.
type SourceFilter string

const SourceFilterAll SourceFilter = "all"

// ReadStatus selects entities by their read flag.
type ReadStatus string

const (
	ReadAll    ReadStatus = "all"
	ReadOnly   ReadStatus = "read"
	ReadUnread ReadStatus = "unread"
)

// StarStatus selects entities by their starred flag.
type StarStatus string

const (
	StarAll       StarStatus = "all"
	StarStarred   StarStatus = "starred"
	StarUnstarred StarStatus = "unstarred"
)

// InterestStatus selects entities by their interested flag.
type InterestStatus string

const (
	InterestAll           InterestStatus = "all"
	InterestInterested    InterestStatus = "interested"
	InterestNotInterested InterestStatus = "not-interested"
)

// DefaultDateRangeDays is the date window of DefaultCriteria.
const DefaultDateRangeDays = 7

// FilterCriteria configures the filtered, ordered view of the library.
// It is a value: replace it or merge a CriteriaPatch, never share pointers.
type FilterCriteria struct {
	Source         SourceFilter   `json:"source" yaml:"source"`
	MinRelevance   int            `json:"min_relevance" yaml:"min_relevance"`
	DateRangeDays  int            `json:"date_range_days" yaml:"date_range_days"`
	ReadStatus     ReadStatus     `json:"read_status" yaml:"read_status"`
	StarStatus     StarStatus     `json:"star_status" yaml:"star_status"`
	InterestStatus InterestStatus `json:"interest_status" yaml:"interest_status"`
	SearchQuery    string         `json:"search_query" yaml:"search_query"`
}

// DefaultCriteria returns the criteria used on startup and after a reset.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Source:         SourceFilterAll,
		MinRelevance:   0,
		DateRangeDays:  DefaultDateRangeDays,
		ReadStatus:     ReadAll,
		StarStatus:     StarAll,
		InterestStatus: InterestAll,
		SearchQuery:    "",
	}
}

// Validate checks enum values and numeric bounds.
func (c FilterCriteria) Validate() error {
	if c.Source != SourceFilterAll && !SourceKind(c.Source).Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidCriteria, c.Source)
	}
	if c.MinRelevance < MinRelevanceScore || c.MinRelevance > MaxRelevanceScore {
		return fmt.Errorf("%w: min relevance %d outside [%d,%d]",
			ErrInvalidCriteria, c.MinRelevance, MinRelevanceScore, MaxRelevanceScore)
	}
	switch c.ReadStatus {
	case ReadAll, ReadOnly, ReadUnread:
	default:
		return fmt.Errorf("%w: unknown read status %q", ErrInvalidCriteria, c.ReadStatus)
	}
	switch c.StarStatus {
	case StarAll, StarStarred, StarUnstarred:
	default:
		return fmt.Errorf("%w: unknown star status %q", ErrInvalidCriteria, c.StarStatus)
	}
	switch c.InterestStatus {
	case InterestAll, InterestInterested, InterestNotInterested:
	default:
		return fmt.Errorf("%w: unknown interest status %q", ErrInvalidCriteria, c.InterestStatus)
	}
	return nil
}

// CriteriaPatch is a partial FilterCriteria. Nil fields keep the current value.
type CriteriaPatch struct {
	Source         *SourceFilter   `json:"source,omitempty"`
	MinRelevance   *int            `json:"min_relevance,omitempty"`
	DateRangeDays  *int            `json:"date_range_days,omitempty"`
	ReadStatus     *ReadStatus     `json:"read_status,omitempty"`
	StarStatus     *StarStatus     `json:"star_status,omitempty"`
	InterestStatus *InterestStatus `json:"interest_status,omitempty"`
	SearchQuery    *string         `json:"search_query,omitempty"`
}

// Merge returns a copy of c with the fields present in p applied.
func (c FilterCriteria) Merge(p CriteriaPatch) FilterCriteria {
	if p.Source != nil {
		c.Source = *p.Source
	}
	if p.MinRelevance != nil {
		c.MinRelevance = *p.MinRelevance
	}
	if p.DateRangeDays != nil {
		c.DateRangeDays = *p.DateRangeDays
	}
	if p.ReadStatus != nil {
		c.ReadStatus = *p.ReadStatus
	}
	if p.StarStatus != nil {
		c.StarStatus = *p.StarStatus
	}
	if p.InterestStatus != nil {
		c.InterestStatus = *p.InterestStatus
	}
	if p.SearchQuery != nil {
		c.SearchQuery = *p.SearchQuery
	}
	return c
}
