// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-radar
// ingestion pipeline, store, and view engine.
package types

import "time"

// SourceKind identifies the upstream source an entity was ingested from.
type SourceKind string

const (
	SourceArxiv  SourceKind = "arxiv"
	SourceGitHub SourceKind = "github"
)

// Valid reports whether k is one of the known source kinds.
func (k SourceKind) Valid() bool {
	return k == SourceArxiv || k == SourceGitHub
}

// MaxTags is the number of tags kept on an entity.
const MaxTags = 5

// Relevance bounds for ResearchEntity.RelevanceScore.
const (
	MinRelevanceScore = 0
	MaxRelevanceScore = 10
)

// User score bounds for ResearchEntity.UserScore.
const (
	MinUserScore = 1
	MaxUserScore = 5
)

// ResearchEntity is a single normalized research item: an arXiv paper or a
// GitHub repository.
type ResearchEntity struct {
	// ID is stable across refetches of the same upstream item
	// (e.g. "arxiv-2401.01234v1", "github-123456").
	ID string `json:"id" yaml:"id"`

	// Title is whitespace-collapsed and trimmed.
	Title string `json:"title" yaml:"title"`

	// Description is the abstract or repository description, normalized like Title.
	Description string `json:"description" yaml:"description"`

	// Authors lists paper authors in source order, or the owning account
	// for repositories. Never empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Date is the publication (arXiv) or last-update (GitHub) instant in UTC.
	Date time.Time `json:"date" yaml:"date"`

	// Source is the upstream the entity came from.
	Source SourceKind `json:"source" yaml:"source"`

	// URL links to the abstract page or repository home.
	URL string `json:"url" yaml:"url"`

	// RelevanceScore is the ingestion-time heuristic score in [0,10].
	RelevanceScore int `json:"relevance_score" yaml:"relevance_score"`

	// Tags are lowercase, deduplicated, and capped at MaxTags.
	Tags []string `json:"tags" yaml:"tags"`

	IsStarred    bool `json:"is_starred" yaml:"is_starred"`
	IsInterested bool `json:"is_interested" yaml:"is_interested"`
	IsRead       bool `json:"is_read" yaml:"is_read"`

	// UserScore is nil until the user rates the entity (1-5).
	UserScore *int `json:"user_score,omitempty" yaml:"user_score,omitempty"`
}

// Clone returns a deep copy of e so callers can mutate slices freely.
func (e ResearchEntity) Clone() ResearchEntity {
	c := e
	c.Authors = append([]string(nil), e.Authors...)
	c.Tags = append([]string(nil), e.Tags...)
	if e.UserScore != nil {
		s := *e.UserScore
		c.UserScore = &s
	}
	return c
}

// EntityUpdate is a partial update of a ResearchEntity. Nil fields are left
// untouched by the store.
type EntityUpdate struct {
	Title          *string     `json:"title,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Authors        []string    `json:"authors,omitempty"`
	Date           *time.Time  `json:"date,omitempty"`
	Source         *SourceKind `json:"source,omitempty"`
	URL            *string     `json:"url,omitempty"`
	RelevanceScore *int        `json:"relevance_score,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	IsStarred      *bool       `json:"is_starred,omitempty"`
	IsInterested   *bool       `json:"is_interested,omitempty"`
	IsRead         *bool       `json:"is_read,omitempty"`
	UserScore      *int        `json:"user_score,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u EntityUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Authors == nil &&
		u.Date == nil && u.Source == nil && u.URL == nil &&
		u.RelevanceScore == nil && u.Tags == nil && u.IsStarred == nil &&
		u.IsInterested == nil && u.IsRead == nil && u.UserScore == nil
}

// ApplyTo returns a copy of e with the fields present in u applied.
func (u EntityUpdate) ApplyTo(e ResearchEntity) ResearchEntity {
	out := e.Clone()
	if u.Title != nil {
		out.Title = *u.Title
	}
	if u.Description != nil {
		out.Description = *u.Description
	}
	if u.Authors != nil {
		out.Authors = append([]string(nil), u.Authors...)
	}
	if u.Date != nil {
		out.Date = u.Date.UTC()
	}
	if u.Source != nil {
		out.Source = *u.Source
	}
	if u.URL != nil {
		out.URL = *u.URL
	}
	if u.RelevanceScore != nil {
		out.RelevanceScore = *u.RelevanceScore
	}
	if u.Tags != nil {
		out.Tags = append([]string(nil), u.Tags...)
	}
	if u.IsStarred != nil {
		out.IsStarred = *u.IsStarred
	}
	if u.IsInterested != nil {
		out.IsInterested = *u.IsInterested
	}
	if u.IsRead != nil {
		out.IsRead = *u.IsRead
	}
	if u.UserScore != nil {
		s := *u.UserScore
		out.UserScore = &s
	}
	return out
}
