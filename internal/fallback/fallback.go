// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback provides the fixed entity set shown when every source
// fails. The set is embedded YAML and its dates are computed relative to a
// caller-supplied instant, so the output is deterministic for a given now.
package fallback

import (
	_ "embed"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-radar/pkg/types"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// record is one fallback entry as written in fallback.yaml.
type record struct {
	ID             string           `yaml:"id"`
	Title          string           `yaml:"title"`
	Description    string           `yaml:"description"`
	Authors        []string         `yaml:"authors"`
	Age            time.Duration    `yaml:"age"`
	Source         types.SourceKind `yaml:"source"`
	URL            string           `yaml:"url"`
	RelevanceScore int              `yaml:"relevance_score"`
	IsInterested   bool             `yaml:"is_interested"`
	Tags           []string         `yaml:"tags"`
}

var records = mustParse(fallbackYAML)

func mustParse(data []byte) []record {
	recs, err := parse(data)
	if err != nil {
		panic(err)
	}
	return recs
}

func parse(data []byte) ([]record, error) {
	var recs []record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing fallback set: %w", err)
	}
	for _, r := range recs {
		if r.ID == "" || !r.Source.Valid() || len(r.Authors) == 0 {
			return nil, fmt.Errorf("invalid fallback record %q", r.ID)
		}
	}
	return recs, nil
}

// Set returns fresh copies of the fallback entities dated relative to now.
func Set(now time.Time) []types.ResearchEntity {
	out := make([]types.ResearchEntity, len(records))
	for i, r := range records {
		out[i] = types.ResearchEntity{
			ID:             r.ID,
			Title:          r.Title,
			Description:    r.Description,
			Authors:        append([]string(nil), r.Authors...),
			Date:           now.Add(-r.Age).UTC(),
			Source:         r.Source,
			URL:            r.URL,
			RelevanceScore: r.RelevanceScore,
			IsInterested:   r.IsInterested,
			Tags:           append([]string{}, r.Tags...),
		}
	}
	return out
}
