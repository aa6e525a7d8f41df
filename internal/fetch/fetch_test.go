// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// stubSource returns canned candidates or an error.
type stubSource struct {
	name       string
	candidates []types.CandidatePaper
	err        error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]types.CandidatePaper, error) {
	return s.candidates, s.err
}

func TestFetchAllMergesAcrossSources(t *testing.T) {
	arxiv := &stubSource{name: "arxiv", candidates: []types.CandidatePaper{
		{
			Identifier: "2301.07041v1",
			Title:      "A Shared Paper",
			Abstract:   "From the preprint server.",
			Authors:    []string{"Alice Author"},
			Preprint:   true,
			Source:     "arxiv",
		},
	}}
	crossref := &stubSource{name: "crossref", candidates: []types.CandidatePaper{
		{
			Identifier:    "10.1234/shared",
			Title:         "A Shared Paper!",
			Authors:       []string{"Alice Author"},
			Venue:         "Journal of Sharing",
			CitationCount: 4,
			Source:        "crossref",
		},
		{
			Identifier: "10.1234/other",
			Title:      "An Unrelated Paper",
			Source:     "crossref",
		},
	}}

	out, err := FetchAll(context.Background(), []Source{arxiv, crossref}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, out.DupsMerged)
	require.Len(t, out.Candidates, 2)

	var shared types.CandidatePaper
	for _, c := range out.Candidates {
		if strings.HasPrefix(c.Title, "A Shared") {
			shared = c
		}
	}
	// The merged record keeps the richer metadata of the two and the
	// published side wins over the preprint.
	assert.False(t, shared.Preprint)
	assert.Equal(t, "Journal of Sharing", shared.Venue)
	assert.Equal(t, "From the preprint server.", shared.Abstract)
	assert.Equal(t, 4, shared.CitationCount)
	assert.Equal(t, "arxiv,crossref", shared.Source)
}

func TestFetchAllPartialFailure(t *testing.T) {
	good := &stubSource{name: "arxiv", candidates: []types.CandidatePaper{
		{Identifier: "2301.00001", Title: "Survivor"},
	}}
	bad := &stubSource{name: "crossref", err: errors.New("boom")}

	var buf strings.Builder
	out, err := FetchAll(context.Background(), []Source{good, bad}, &buf)
	require.NoError(t, err)
	assert.Len(t, out.Candidates, 1)
	assert.Len(t, out.SourceErrors, 1)
	assert.Contains(t, buf.String(), "crossref failed")
}

func TestFetchAllTotalFailure(t *testing.T) {
	bad := &stubSource{name: "arxiv", err: errors.New("boom")}
	_, err := FetchAll(context.Background(), []Source{bad}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all candidate sources failed")
}

func TestFetchAllNoSources(t *testing.T) {
	_, err := FetchAll(context.Background(), nil, io.Discard)
	require.Error(t, err)
}

func TestMergeDuplicatesByIdentifier(t *testing.T) {
	merged, removed := mergeDuplicates([]types.CandidatePaper{
		{Identifier: "arXiv:2301.07041v1", Title: "Same Work"},
		{Identifier: "2301.07041", Title: "Same Work Retitled"},
	})
	assert.Equal(t, 1, removed)
	assert.Len(t, merged, 1)
}

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>Deep  Learning
      for Trees</title>
    <summary>  A method.
      With wrapped lines.  </summary>
    <published>2026-02-27T18:00:00Z</published>
    <author><name>Alice Author</name></author>
    <author><name>Bob Builder</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/invalid</id>
    <title>No Usable ID</title>
  </entry>
</feed>`

func TestArxivSourceFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(arxivFixture))
	}))
	defer server.Close()

	orig := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = orig }()

	src := &ArxivSource{
		Client:    server.Client(),
		Config:    types.ArxivSourceConfig{Categories: []string{"cs.LG", "q-bio.PE"}, DaysBack: 7},
		UserAgent: "paperwatch-test",
		Now:       func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}

	candidates, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "2301.07041v2", c.Identifier)
	assert.Equal(t, "Deep Learning for Trees", c.Title)
	assert.Equal(t, "A method. With wrapped lines.", c.Abstract)
	assert.Equal(t, []string{"Alice Author", "Bob Builder"}, c.Authors)
	assert.True(t, c.Preprint)
	assert.Equal(t, "arxiv", c.Source)
	assert.Equal(t, 2026, c.Published.Year())

	assert.Contains(t, gotQuery, "cat:cs.LG OR cat:q-bio.PE")
	assert.Contains(t, gotQuery, "submittedDate:[202602220000 TO 202603010000]")
}

func TestArxivSourceRequiresCategories(t *testing.T) {
	src := &ArxivSource{Client: http.DefaultClient}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

const crossrefFixture = `{
  "message": {
    "items": [
      {
        "DOI": "10.1234/journal.1",
        "type": "journal-article",
        "title": ["A Published Result"],
        "container-title": ["Journal of Results"],
        "abstract": "<jats:p>Findings &amp; methods.</jats:p>",
        "author": [{"given": "Carol", "family": "Chen"}],
        "is-referenced-by-count": 12,
        "published": {"date-parts": [[2026, 2, 25]]}
      },
      {
        "DOI": "10.1101/2026.02.20.123456",
        "type": "posted-content",
        "title": ["A Biorxiv Preprint"],
        "author": [{"given": "Dan", "family": "Diaz"}],
        "issued": {"date-parts": [[2026, 2]]}
      },
      {
        "DOI": "",
        "title": ["Dropped: no DOI"]
      }
    ]
  }
}`

func TestCrossrefSourceFetch(t *testing.T) {
	var gotMailto, gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMailto = r.URL.Query().Get("mailto")
		gotFilter = r.URL.Query().Get("filter")
		w.Write([]byte(crossrefFixture))
	}))
	defer server.Close()

	orig := crossrefAPIBase
	crossrefAPIBase = server.URL
	defer func() { crossrefAPIBase = orig }()

	src := &CrossrefSource{
		Client:    server.Client(),
		Config:    types.CrossrefSourceConfig{Mailto: "reader@example.org", DaysBack: 7},
		UserAgent: "paperwatch-test",
		Now:       func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}

	candidates, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	article := candidates[0]
	assert.Equal(t, "10.1234/journal.1", article.Identifier)
	assert.Equal(t, "A Published Result", article.Title)
	assert.Equal(t, "Findings &amp; methods.", article.Abstract)
	assert.Equal(t, []string{"Carol Chen"}, article.Authors)
	assert.Equal(t, "Journal of Results", article.Venue)
	assert.Equal(t, 12, article.CitationCount)
	assert.False(t, article.Preprint)
	assert.Equal(t, time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), article.Published)

	preprint := candidates[1]
	assert.True(t, preprint.Preprint)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), preprint.Published)

	assert.Equal(t, "reader@example.org", gotMailto)
	assert.Equal(t, "from-index-date:2026-02-22", gotFilter)
}

func TestCrossrefSourceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	orig := crossrefAPIBase
	crossrefAPIBase = server.URL
	defer func() { crossrefAPIBase = orig }()

	src := &CrossrefSource{Client: server.Client()}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestStripJATS(t *testing.T) {
	got := stripJATS(`<jats:p>First   part.</jats:p> <jats:italic>emphasis</jats:italic>`)
	assert.Equal(t, "First part. emphasis", got)
}

func TestBuildSources(t *testing.T) {
	cfg := types.DefaultConfig().Sources
	sources := BuildSources(cfg)
	require.Len(t, sources, 2)
	assert.Equal(t, "arxiv", sources[0].Name())
	assert.Equal(t, "crossref", sources[1].Name())

	cfg.Crossref.Enabled = false
	sources = BuildSources(cfg)
	require.Len(t, sources, 1)
	assert.Equal(t, "arxiv", sources[0].Name())
}
