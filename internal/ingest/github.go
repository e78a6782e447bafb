// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-radar/internal/httputil"
	"github.com/pdiddy/research-radar/pkg/types"
)

const (
	// githubQuery is the fixed repository search filter.
	githubQuery = `agent OR llm OR "language model" in:name,description,readme`

	githubBaseScore     = 5.0
	githubMaxStarBonus  = 3.0
	githubStarsPerPoint = 1000.0
	githubNameWeight    = 0.7
	githubDescWeight    = 0.5
	githubAuthorPrefix  = "GitHub: "
	noDescription       = "No description available"
	defaultGitHubRPS    = 0.5
)

// githubTagKeywords become tags when found in name or description.
var githubTagKeywords = []string{"agent", "llm", "language model", "ai", "ml", "neural", "transformer"}

// githubScoreTerms raise the score: +0.7 in the name, +0.5 in the description.
var githubScoreTerms = []string{"agent", "autonomous", "llm", "language model", "ai", "gpt", "foundation model"}

// GitHubAdapter searches GitHub for recently updated agent and LLM repositories.
type GitHubAdapter struct {
	client     *gh.Client
	maxResults int
	retry      httputil.Policy
	limiter    *rate.Limiter
	log        *zap.Logger
	now        func() time.Time
}

// NewGitHubAdapter builds an adapter from configuration. httpClient carries
// the timeout; a configured token is layered on with an oauth2 transport.
func NewGitHubAdapter(cfg types.SourcesConfig, httpClient *http.Client, log *zap.Logger) (*GitHubAdapter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if token := strings.TrimSpace(cfg.GitHub.Token); token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		tc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		tc.Timeout = httpClient.Timeout
		httpClient = tc
	}

	client := gh.NewClient(httpClient)
	if cfg.HTTP.UserAgent != "" {
		client.UserAgent = cfg.HTTP.UserAgent
	}
	if base := strings.TrimSpace(cfg.GitHub.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	rps := cfg.GitHub.RatePerSecond
	if rps <= 0 {
		rps = defaultGitHubRPS
	}

	return &GitHubAdapter{
		client:     client,
		maxResults: cfg.GitHub.MaxResults,
		retry:      httputil.PolicyFromConfig(cfg.Retry),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log.With(zap.String("adapter", "github")),
		now:        time.Now,
	}, nil
}

// Name returns the adapter identifier.
func (a *GitHubAdapter) Name() string { return string(types.SourceGitHub) }

// Fetch searches repositories and normalizes them. Failures are logged and
// produce an empty slice.
func (a *GitHubAdapter) Fetch(ctx context.Context) []types.ResearchEntity {
	raw, err := a.search(ctx)
	if err != nil {
		a.log.Error("GitHub fetch failed", zap.Error(err))
		return []types.ResearchEntity{}
	}

	now := a.now()
	items := make([]types.ResearchEntity, 0, len(raw))
	for _, r := range raw {
		e, ok := a.normalize(r, now)
		if !ok {
			continue
		}
		items = append(items, e)
	}
	a.log.Info("GitHub fetch complete", zap.Int("repositories", len(raw)), zap.Int("items", len(items)))
	return items
}

// githubSearchPage is the search envelope. Items stay raw so one malformed
// repository cannot fail the whole page.
type githubSearchPage struct {
	TotalCount int               `json:"total_count"`
	Items      []json.RawMessage `json:"items"`
}

// githubRepo holds the repository fields the adapter maps. UpdatedAt is kept
// as text and parsed per item.
type githubRepo struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Stars       int      `json:"stargazers_count"`
	UpdatedAt   string   `json:"updated_at"`
	Topics      []string `json:"topics"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (a *GitHubAdapter) search(ctx context.Context) ([]json.RawMessage, error) {
	perPage := a.maxResults
	if perPage <= 0 {
		perPage = defaultPageSize
	}
	params := url.Values{}
	params.Set("q", githubQuery)
	params.Set("sort", "updated")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(perPage))

	var items []json.RawMessage
	err := httputil.Retry(ctx, a.retry, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return httputil.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}
		req, err := a.client.NewRequest(http.MethodGet, "search/repositories?"+params.Encode(), nil)
		if err != nil {
			return httputil.Permanent(fmt.Errorf("building request: %w", err))
		}
		var page githubSearchPage
		resp, err := a.client.Do(ctx, req, &page)
		if err != nil {
			return classifyGitHubError(resp, err)
		}
		// A payload without an items array is zero results.
		items = page.Items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GitHub search: %w", err)
	}
	return items, nil
}

// classifyGitHubError marks errors that retrying cannot fix as permanent.
func classifyGitHubError(resp *gh.Response, err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return httputil.Permanent(err)
	}
	if resp != nil && resp.Response != nil && !httputil.Retryable(resp.StatusCode) {
		return httputil.Permanent(err)
	}
	return err
}

// normalize decodes and maps one repository. Items that do not decode or
// carry no id are skipped with a warning.
func (a *GitHubAdapter) normalize(raw json.RawMessage, now time.Time) (types.ResearchEntity, bool) {
	var repo githubRepo
	if err := json.Unmarshal(raw, &repo); err != nil {
		a.log.Warn("skipping malformed repository", zap.Error(err))
		return types.ResearchEntity{}, false
	}
	if repo.ID == 0 {
		a.log.Warn("skipping repository without id")
		return types.ResearchEntity{}, false
	}
	id := string(types.SourceGitHub) + "-" + strconv.FormatInt(repo.ID, 10)

	name := normalizeText(repo.Name)
	description := normalizeText(repo.Description)
	lowerName := strings.ToLower(name)
	lowerDesc := strings.ToLower(description)

	owner := repo.FullName
	if owner == "" {
		owner = repo.Owner.Login
	}

	tags := append([]string(nil), repo.Topics...)
	tags = appendKeywordTags(tags, githubTagKeywords, lowerName, lowerDesc)

	if description == "" {
		description = noDescription
	}

	return types.ResearchEntity{
		ID:             id,
		Title:          name,
		Description:    description,
		Authors:        []string{githubAuthorPrefix + owner},
		Date:           parseTimestamp(a.log, id, repo.UpdatedAt, now),
		Source:         types.SourceGitHub,
		URL:            repo.HTMLURL,
		RelevanceScore: githubScore(lowerName, lowerDesc, repo.Stars),
		Tags:           finalizeTags(tags),
	}, true
}

// githubScore starts at 5, adds up to 3 points for stars (one per thousand),
// 0.7 per term in the name and 0.5 per term in the description. Inputs must
// be lowercased; an empty description contributes nothing.
func githubScore(name, description string, stars int) int {
	score := githubBaseScore + math.Min(float64(stars)/githubStarsPerPoint, githubMaxStarBonus)
	for _, term := range githubScoreTerms {
		if strings.Contains(name, term) {
			score += githubNameWeight
		}
		if description != "" && strings.Contains(description, term) {
			score += githubDescWeight
		}
	}
	return roundScore(score)
}
