// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// BuildSources constructs the enabled candidate sources from config.
// Each source gets its own rate-limited HTTP client so one slow API
// does not consume another's request budget.
func BuildSources(cfg types.SourcesConfig) []Source {
	var sources []Source
	if cfg.Arxiv.Enabled {
		sources = append(sources, &ArxivSource{
			Client:    httputil.NewLimitedClient(cfg.Timeout, cfg.RequestsPerSecond),
			Config:    cfg.Arxiv,
			UserAgent: cfg.UserAgent,
		})
	}
	if cfg.Crossref.Enabled {
		sources = append(sources, &CrossrefSource{
			Client:    httputil.NewLimitedClient(cfg.Timeout, cfg.RequestsPerSecond),
			Config:    cfg.Crossref,
			UserAgent: cfg.UserAgent,
		})
	}
	return sources
}
