// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-radar/internal/httputil"
	"github.com/pdiddy/research-radar/pkg/types"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

const sampleArxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <published>2024-01-02T10:00:00Z</published>
    <title>Autonomous
      Agents</title>
    <summary>  We study GPT.  </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.00001v1.pdf" rel="related" type="application/pdf"/>
    <category term="cs.AI" scheme="http://arxiv.org/schemas/atom"/>
    <category term="stat.ML" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v2</id>
    <published>yesterday</published>
    <title>A transformer study</title>
    <summary>Neural nets.</summary>
    <link href="http://arxiv.org/abs/2401.00002v2" rel="alternate" type="text/html"/>
  </entry>
  <entry>
    <title>Orphan entry without an id</title>
  </entry>
</feed>`

func newTestArxiv(baseURL string, client *http.Client, log *zap.Logger) *ArxivAdapter {
	return &ArxivAdapter{
		Client:  client,
		BaseURL: baseURL,
		Retry:   httputil.Policy{MaxRetries: 2, BaseDelay: time.Millisecond},
		Log:     log,
		Now:     func() time.Time { return fixedNow },
	}
}

func TestArxivAdapterFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, arxivQuery, q.Get("search_query"))
		assert.Equal(t, "submittedDate", q.Get("sortBy"))
		assert.Equal(t, "descending", q.Get("sortOrder"))
		assert.Equal(t, "10", q.Get("max_results"))
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleArxivFeed)
	}))
	defer ts.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	a := newTestArxiv(ts.URL, ts.Client(), zap.New(core))

	items := a.Fetch(context.Background())
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "arxiv-2401.00001v1", first.ID)
	assert.Equal(t, "Autonomous Agents", first.Title)
	assert.Equal(t, "We study GPT.", first.Description)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, first.Authors)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, types.SourceArxiv, first.Source)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", first.URL)
	// 6 base + agent(1) + autonomous(1) in title + gpt(0.5) in summary = 8.5 -> 9.
	assert.Equal(t, 9, first.RelevanceScore)
	assert.Equal(t, []string{"ai", "stat ml", "agent"}, first.Tags)
	assert.False(t, first.IsStarred)
	assert.Nil(t, first.UserScore)

	second := items[1]
	assert.Equal(t, "arxiv-2401.00002v2", second.ID)
	assert.Equal(t, fixedNow, second.Date, "invalid date is replaced by ingestion time")
	assert.Equal(t, []string{unknownAuthor}, second.Authors)
	assert.Equal(t, "http://arxiv.org/abs/2401.00002v2", second.URL, "falls back to the alternate link")
	assert.Equal(t, []string{"neural", "transformer"}, second.Tags)
	assert.Equal(t, 6, second.RelevanceScore)

	assert.Equal(t, 1, logs.FilterMessage("unparseable date, using ingestion time").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping entry without id").Len())
}

func TestArxivAdapterFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		calls   int32
	}{
		{
			name: "server error retried then given up",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			calls: 3,
		},
		{
			name: "client error not retried",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			calls: 1,
		},
		{
			name: "malformed xml",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "<feed><entry><id>broken")
			},
			calls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			defer ts.Close()

			core, logs := observer.New(zapcore.ErrorLevel)
			a := newTestArxiv(ts.URL, ts.Client(), zap.New(core))

			items := a.Fetch(context.Background())
			assert.NotNil(t, items)
			assert.Empty(t, items)
			assert.Equal(t, tt.calls, atomic.LoadInt32(&calls))
			assert.Equal(t, 1, logs.FilterMessage("arXiv fetch failed").Len())
		})
	}
}

func TestArxivAdapterUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	a := newTestArxiv(url, http.DefaultClient, nil)
	assert.Empty(t, a.Fetch(context.Background()))
}

func TestArxivScore(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
		want    int
	}{
		{"no keywords stays at base", "graph theory", "proofs", 6},
		{"half point rounds up", "nothing", "a chat system", 7},
		{"capped at ten", "autonomous llm agent for chat with gpt", "a language model", 10},
		{"title and summary stack", "llm", "llm", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, arxivScore(tt.title, tt.summary))
		})
	}
}

func TestCategoryTag(t *testing.T) {
	assert.Equal(t, "ai", categoryTag("cs.AI"))
	assert.Equal(t, "stat ml", categoryTag("stat.ML"))
	assert.Equal(t, "ro", categoryTag("cs.RO"))
	assert.Equal(t, "", categoryTag("  "))
}

func TestAbstractLink(t *testing.T) {
	links := []atomLink{
		{Href: "http://arxiv.org/abs/2401.1v1", Rel: "alternate"},
		{Href: "http://arxiv.org/pdf/2401.1v1.pdf", Title: "pdf", Rel: "related"},
	}
	assert.Equal(t, "http://arxiv.org/abs/2401.1v1", abstractLink(links))
	assert.Equal(t, "http://arxiv.org/abs/x", abstractLink([]atomLink{{Href: "http://arxiv.org/abs/x", Rel: "alternate"}}))
	assert.Equal(t, "", abstractLink(nil))
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "2401.01234v2", lastPathSegment("http://arxiv.org/abs/2401.01234v2"))
	assert.Equal(t, "0112017v1", lastPathSegment("http://arxiv.org/abs/cs/0112017v1"))
	assert.Equal(t, "2401.1", lastPathSegment("http://arxiv.org/abs/2401.1/"))
	assert.Equal(t, "", lastPathSegment(""))
}
