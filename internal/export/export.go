// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the stored library to YAML or JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-radar/pkg/types"
)

// Format selects the export encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want yaml or json)", s)
	}
}

// Document is the top-level export payload.
type Document struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Count      int       `json:"count" yaml:"count"`
	Items      []Entry   `json:"items" yaml:"items"`
}

// Entry is one exported entity. Annotations are grouped so a reader can
// tell ingestion fields from user state.
type Entry struct {
	ID             string      `json:"id" yaml:"id"`
	Source         string      `json:"source" yaml:"source"`
	Title          string      `json:"title" yaml:"title"`
	Description    string      `json:"description" yaml:"description"`
	Authors        []string    `json:"authors" yaml:"authors"`
	Date           string      `json:"date" yaml:"date"`
	URL            string      `json:"url" yaml:"url"`
	RelevanceScore int         `json:"relevance_score" yaml:"relevance_score"`
	Tags           []string    `json:"tags" yaml:"tags"`
	Annotations    Annotations `json:"annotations" yaml:"annotations"`
}

// Annotations holds the user state of an exported entity.
type Annotations struct {
	Starred    bool `json:"starred" yaml:"starred"`
	Interested bool `json:"interested" yaml:"interested"`
	Read       bool `json:"read" yaml:"read"`
	UserScore  *int `json:"user_score,omitempty" yaml:"user_score,omitempty"`
}

// NewDocument converts entities into an export document.
func NewDocument(entities []types.ResearchEntity, exportedAt time.Time) Document {
	doc := Document{
		ExportedAt: exportedAt.UTC(),
		Count:      len(entities),
		Items:      make([]Entry, len(entities)),
	}
	for i, e := range entities {
		doc.Items[i] = Entry{
			ID:             e.ID,
			Source:         string(e.Source),
			Title:          e.Title,
			Description:    e.Description,
			Authors:        e.Authors,
			Date:           e.Date.UTC().Format(time.RFC3339),
			URL:            e.URL,
			RelevanceScore: e.RelevanceScore,
			Tags:           e.Tags,
			Annotations: Annotations{
				Starred:    e.IsStarred,
				Interested: e.IsInterested,
				Read:       e.IsRead,
				UserScore:  e.UserScore,
			},
		}
	}
	return doc
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile exports entities to path, creating parent directories.
func WriteFile(path string, format Format, entities []types.ResearchEntity, exportedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(f, format, NewDocument(entities, exportedAt)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
