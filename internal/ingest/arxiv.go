// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/httputil"
	"github.com/pdiddy/research-radar/pkg/types"
)

const (
	defaultArxivBase = "https://export.arxiv.org/api/query"
	defaultPageSize  = 10

	// arxivQuery is the fixed topical filter sent to arXiv.
	arxivQuery = `cat:cs.AI OR cat:cs.CL AND (agent OR "large language model" OR LLM OR "foundation model")`

	arxivBaseScore = 6.0
	unknownAuthor  = "Unknown author"
)

// arxivTagKeywords become tags when found in title or summary.
var arxivTagKeywords = []string{"agent", "llm", "language model", "foundation model", "neural", "transformer"}

// arxivScoreTerms raise the relevance score: +1 in title, +0.5 in summary.
var arxivScoreTerms = []string{"agent", "autonomous", "llm", "language model", "foundation model", "chat", "gpt"}

// ArxivAdapter queries the arXiv Atom API for recent agent and LLM papers.
type ArxivAdapter struct {
	Client     *http.Client
	BaseURL    string
	MaxResults int
	UserAgent  string
	Retry      httputil.Policy
	Log        *zap.Logger
	Now        func() time.Time
}

// NewArxivAdapter builds an adapter from configuration.
func NewArxivAdapter(cfg types.SourcesConfig, client *http.Client, log *zap.Logger) *ArxivAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ArxivAdapter{
		Client:     client,
		BaseURL:    cfg.Arxiv.BaseURL,
		MaxResults: cfg.Arxiv.MaxResults,
		UserAgent:  cfg.HTTP.UserAgent,
		Retry:      httputil.PolicyFromConfig(cfg.Retry),
		Log:        log.With(zap.String("adapter", "arxiv")),
		Now:        time.Now,
	}
}

// Name returns the adapter identifier.
func (a *ArxivAdapter) Name() string { return string(types.SourceArxiv) }

// Fetch queries arXiv and normalizes the entries. Failures are logged and
// produce an empty slice.
func (a *ArxivAdapter) Fetch(ctx context.Context) []types.ResearchEntity {
	feed, err := a.query(ctx)
	if err != nil {
		a.logger().Error("arXiv fetch failed", zap.Error(err))
		return []types.ResearchEntity{}
	}

	now := a.now()
	items := make([]types.ResearchEntity, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		e, ok := a.normalize(entry, now)
		if !ok {
			continue
		}
		items = append(items, e)
	}
	a.logger().Info("arXiv fetch complete", zap.Int("entries", len(feed.Entries)), zap.Int("items", len(items)))
	return items
}

func (a *ArxivAdapter) query(ctx context.Context) (*atomFeed, error) {
	base := a.BaseURL
	if base == "" {
		base = defaultArxivBase
	}
	maxResults := a.MaxResults
	if maxResults <= 0 {
		maxResults = defaultPageSize
	}

	params := url.Values{
		"search_query": {arxivQuery},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
		"max_results":  {strconv.Itoa(maxResults)},
	}
	reqURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if a.UserAgent != "" {
		req.Header.Set("User-Agent", a.UserAgent)
	}

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, a.Retry)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

// normalize maps one Atom entry onto an entity. Entries without an id are
// skipped; every other missing field gets a safe default.
func (a *ArxivAdapter) normalize(entry atomEntry, now time.Time) (types.ResearchEntity, bool) {
	log := a.logger()

	arxivID := lastPathSegment(entry.ID)
	if arxivID == "" {
		log.Warn("skipping entry without id", zap.String("title", normalizeText(entry.Title)))
		return types.ResearchEntity{}, false
	}
	id := string(types.SourceArxiv) + "-" + arxivID

	title := normalizeText(entry.Title)
	summary := normalizeText(entry.Summary)
	lowerTitle := strings.ToLower(title)
	lowerSummary := strings.ToLower(summary)

	var authors []string
	for _, au := range entry.Authors {
		if name := normalizeText(au.Name); name != "" {
			authors = append(authors, name)
		}
	}
	if len(authors) == 0 {
		log.Warn("entry has no authors", zap.String("id", id))
		authors = []string{unknownAuthor}
	}

	var tags []string
	for _, c := range entry.Categories {
		if tag := categoryTag(c.Term); tag != "" {
			tags = append(tags, tag)
		}
	}
	tags = appendKeywordTags(tags, arxivTagKeywords, lowerTitle, lowerSummary)

	link := abstractLink(entry.Links)
	if link == "" {
		log.Debug("entry has no usable link, deriving from id", zap.String("id", id))
		link = "https://arxiv.org/abs/" + arxivID
	}

	return types.ResearchEntity{
		ID:             id,
		Title:          title,
		Description:    summary,
		Authors:        authors,
		Date:           parseTimestamp(log, id, entry.Published, now),
		Source:         types.SourceArxiv,
		URL:            link,
		RelevanceScore: arxivScore(lowerTitle, lowerSummary),
		Tags:           finalizeTags(tags),
	}, true
}

// arxivScore starts at 6 and adds 1 per term in the title and 0.5 per term
// in the summary. Inputs must be lowercased.
func arxivScore(title, summary string) int {
	score := arxivBaseScore
	for _, term := range arxivScoreTerms {
		if strings.Contains(title, term) {
			score += 1
		}
		if strings.Contains(summary, term) {
			score += 0.5
		}
	}
	return roundScore(score)
}

// categoryTag turns an arXiv category term into a readable tag
// (e.g. "cs.AI" -> "ai", "stat.ML" -> "stat ml").
func categoryTag(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	term = strings.Replace(term, "cs.", "", 1)
	parts := strings.Split(term, ".")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, " ")
}

// abstractLink prefers the pdf link rewritten to the abstract page and
// falls back to the alternate link.
func abstractLink(links []atomLink) string {
	for _, l := range links {
		if l.Title == "pdf" && l.Href != "" {
			href := strings.TrimSuffix(l.Href, ".pdf")
			return strings.Replace(href, "pdf", "abs", 1)
		}
	}
	for _, l := range links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	return ""
}

// lastPathSegment returns the final path segment of an entry id URL
// (e.g. "http://arxiv.org/abs/2401.01234v2" -> "2401.01234v2").
func lastPathSegment(idURL string) string {
	idURL = strings.TrimRight(strings.TrimSpace(idURL), "/")
	if idx := strings.LastIndex(idURL, "/"); idx >= 0 {
		return idURL[idx+1:]
	}
	return idURL
}

func (a *ArxivAdapter) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func (a *ArxivAdapter) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Authors    []atomAuthor   `xml:"author"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}
