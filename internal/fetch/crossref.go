// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefSource fetches recently indexed works from Crossref.
type CrossrefSource struct {
	Client    *http.Client
	Config    types.CrossrefSourceConfig
	UserAgent string

	Now func() time.Time
}

// Name returns the source identifier.
func (s *CrossrefSource) Name() string { return "crossref" }

// Fetch queries the Crossref REST API for works indexed within the
// fetch window. The configured mailto is attached per the polite-pool
// policy. Works typed as posted-content are marked as preprints.
func (s *CrossrefSource) Fetch(ctx context.Context) ([]types.CandidatePaper, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	daysBack := s.Config.DaysBack
	if daysBack <= 0 {
		daysBack = 7
	}
	rows := s.Config.MaxResults
	if rows <= 0 {
		rows = 500
	}

	from := now().UTC().AddDate(0, 0, -daysBack).Format("2006-01-02")

	params := url.Values{}
	params.Set("filter", "from-index-date:"+from)
	params.Set("rows", fmt.Sprintf("%d", rows))
	params.Set("sort", "indexed")
	params.Set("order", "desc")
	if s.Config.Mailto != "" {
		params.Set("mailto", s.Config.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	var body crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var candidates []types.CandidatePaper
	for _, item := range body.Message.Items {
		if item.DOI == "" || len(item.Title) == 0 {
			continue
		}

		c := types.CandidatePaper{
			Identifier:    item.DOI,
			Title:         strings.TrimSpace(item.Title[0]),
			Abstract:      stripJATS(item.Abstract),
			CitationCount: item.IsReferencedByCount,
			Preprint:      item.Type == "posted-content",
			Source:        "crossref",
		}
		for _, a := range item.Author {
			name := strings.TrimSpace(a.Given + " " + a.Family)
			if name != "" {
				c.Authors = append(c.Authors, name)
			}
		}
		if len(item.ContainerTitle) > 0 {
			c.Venue = item.ContainerTitle[0]
		}
		if t, ok := item.publishedTime(); ok {
			c.Published = t
		}

		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Crossref REST API JSON structures, limited to the fields used.
type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI                 string            `json:"DOI"`
	Type                string            `json:"type"`
	Title               []string          `json:"title"`
	ContainerTitle      []string          `json:"container-title"`
	Abstract            string            `json:"abstract"`
	Author              []crossrefAuthor  `json:"author"`
	IsReferencedByCount int               `json:"is-referenced-by-count"`
	Published           *crossrefDateInfo `json:"published"`
	Issued              *crossrefDateInfo `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDateInfo struct {
	DateParts [][]int `json:"date-parts"`
}

// publishedTime resolves the work's publication date, preferring the
// published field over issued. Missing month or day default to 1.
func (w crossrefWork) publishedTime() (time.Time, bool) {
	for _, info := range []*crossrefDateInfo{w.Published, w.Issued} {
		if info == nil || len(info.DateParts) == 0 || len(info.DateParts[0]) == 0 {
			continue
		}
		parts := info.DateParts[0]
		year, month, day := parts[0], 1, 1
		if len(parts) > 1 {
			month = parts[1]
		}
		if len(parts) > 2 {
			day = parts[2]
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// stripJATS removes the JATS XML markup Crossref wraps abstracts in.
func stripJATS(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
