// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource fetches recent submissions in the configured categories.
// Everything it returns is marked as a preprint.
type ArxivSource struct {
	Client    *http.Client
	Config    types.ArxivSourceConfig
	UserAgent string

	// Now is the clock used to compute the submission window. Defaults
	// to time.Now.
	Now func() time.Time
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Fetch queries the arXiv API for submissions in the configured
// categories within the fetch window, newest first.
func (s *ArxivSource) Fetch(ctx context.Context) ([]types.CandidatePaper, error) {
	if len(s.Config.Categories) == 0 {
		return nil, fmt.Errorf("no arXiv categories configured")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	daysBack := s.Config.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}
	maxResults := s.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 500
	}

	cats := make([]string, len(s.Config.Categories))
	for i, c := range s.Config.Categories {
		cats[i] = "cat:" + c
	}
	end := now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	query := fmt.Sprintf("(%s) AND submittedDate:[%s TO %s]",
		strings.Join(cats, " OR "),
		start.Format("200601021504"),
		end.Format("200601021504"))

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var candidates []types.CandidatePaper
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		c := types.CandidatePaper{
			Identifier: arxivID,
			Title:      collapseWhitespace(entry.Title),
			Abstract:   collapseWhitespace(entry.Summary),
			Preprint:   true,
			Source:     "arxiv",
		}
		for _, a := range entry.Authors {
			c.Authors = append(c.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			c.Published = t
		}

		candidates = append(candidates, c)
	}
	return candidates, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the bare arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1"); version
// normalization happens at dedup time.
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return idURL[idx+len(prefix):]
}

// collapseWhitespace trims and collapses the newline-wrapped text the
// arXiv feed produces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
