// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves new candidate papers from academic APIs and
// merges duplicate records across sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/paperwatch/internal/rank"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// Source fetches recent candidate papers from a single academic API.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]types.CandidatePaper, error)
}

// Output holds the fetched candidates and merge statistics.
type Output struct {
	Candidates   []types.CandidatePaper
	DupsMerged   int
	SourceErrors []string
}

// FetchAll queries all sources concurrently and merges records that
// refer to the same paper, which happens routinely when a preprint is
// also registered with Crossref. A failing source degrades to a warning
// on w; only when every source fails is the run aborted.
func FetchAll(ctx context.Context, sources []Source, w io.Writer) (Output, error) {
	if len(sources) == 0 {
		return Output{}, fmt.Errorf("no candidate sources enabled")
	}

	type sourceResult struct {
		name       string
		candidates []types.CandidatePaper
		err        error
	}

	ch := make(chan sourceResult, len(sources))
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			candidates, err := src.Fetch(ctx)
			ch <- sourceResult{name: src.Name(), candidates: candidates, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.CandidatePaper
	var sourceErrors []string
	for sr := range ch {
		if sr.err != nil {
			sourceErrors = append(sourceErrors, fmt.Sprintf("%s: %v", sr.name, sr.err))
			fmt.Fprintf(w, "warning: source %s failed: %v\n", sr.name, sr.err)
			continue
		}
		fmt.Fprintf(w, "fetched %d candidates from %s\n", len(sr.candidates), sr.name)
		all = append(all, sr.candidates...)
	}

	if len(sourceErrors) == len(sources) {
		return Output{SourceErrors: sourceErrors}, fmt.Errorf("all candidate sources failed")
	}

	merged, removed := mergeDuplicates(all)
	return Output{
		Candidates:   merged,
		DupsMerged:   removed,
		SourceErrors: sourceErrors,
	}, nil
}

// mergeDuplicates collapses records sharing a normalized identifier or a
// title-author signature into one, folding fields together.
func mergeDuplicates(candidates []types.CandidatePaper) ([]types.CandidatePaper, int) {
	seen := make(map[string]int) // dedup key → index in merged
	var merged []types.CandidatePaper
	removed := 0

	for _, c := range candidates {
		idKey := ""
		if id := rank.NormalizeIdentifier(c.Identifier); id != "" {
			idKey = "id:" + id
		}
		sigKey := ""
		if sig := rank.Signature(c.Title, c.Authors); sig != "" {
			sigKey = "sig:" + sig
		}

		if idx, ok := lookup(seen, idKey, sigKey); ok {
			mergeInto(&merged[idx], c)
			removed++
			continue
		}

		idx := len(merged)
		merged = append(merged, c)
		if idKey != "" {
			seen[idKey] = idx
		}
		if sigKey != "" {
			seen[sigKey] = idx
		}
	}
	return merged, removed
}

func lookup(seen map[string]int, keys ...string) (int, bool) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if idx, ok := seen[key]; ok {
			return idx, ok
		}
	}
	return 0, false
}

// mergeInto folds src into dst: empty fields are filled, counts keep
// their maximum, and a published record wins over a preprint. A paper
// seen both on arXiv and in Crossref ends up as one published record
// with the richer metadata of the two.
func mergeInto(dst *types.CandidatePaper, src types.CandidatePaper) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Venue == "" && src.Venue != "" {
		dst.Venue = src.Venue
	}
	if dst.Published.IsZero() && !src.Published.IsZero() {
		dst.Published = src.Published
	}
	if src.CitationCount > dst.CitationCount {
		dst.CitationCount = src.CitationCount
	}
	if src.AltmetricScore > dst.AltmetricScore {
		dst.AltmetricScore = src.AltmetricScore
	}
	if dst.Preprint && !src.Preprint {
		dst.Preprint = false
		// The published identifier is the canonical one.
		if src.Identifier != "" {
			dst.Identifier = src.Identifier
		}
	}
	if dst.Source != src.Source && src.Source != "" {
		dst.Source = dst.Source + "," + src.Source
	}
}
