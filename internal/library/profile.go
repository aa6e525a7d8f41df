// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paperwatch/internal/embedding"
	"github.com/pdiddy/paperwatch/internal/vecindex"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// BuildProfile embeds every library paper, writes the vector index to
// dataDir, and returns the interest profile snapshot. Papers whose
// embedding fails are reported on w and left out of the index; the
// profile is still built from the rest. An empty library is an error,
// since there is nothing to profile.
func BuildProfile(ctx context.Context, store *Store, provider embedding.Provider, cfg types.ProfileConfig, dataDir string, w io.Writer) (types.InterestProfile, *vecindex.Index, error) {
	papers, err := store.All(ctx)
	if err != nil {
		return types.InterestProfile{}, nil, fmt.Errorf("loading library: %w", err)
	}
	if len(papers) == 0 {
		return types.InterestProfile{}, nil, fmt.Errorf("library is empty: import papers before building a profile")
	}

	idx := vecindex.New(provider.ModelName(), provider.Dimensions())
	embedded := 0
	for _, p := range papers {
		select {
		case <-ctx.Done():
			return types.InterestProfile{}, nil, ctx.Err()
		default:
		}

		text := p.Title
		if p.Abstract != "" {
			text = p.Title + "\n\n" + p.Abstract
		}
		vec, err := provider.Embed(ctx, text)
		if err != nil {
			fmt.Fprintf(w, "warning: embedding failed for %s: %v\n", p.Identifier, err)
			continue
		}
		if err := idx.Add(p.Identifier, vec); err != nil {
			return types.InterestProfile{}, nil, fmt.Errorf("indexing %s: %w", p.Identifier, err)
		}
		embedded++
	}
	if embedded == 0 {
		return types.InterestProfile{}, nil, fmt.Errorf("no library papers could be embedded")
	}

	if err := idx.Save(vecindex.Path(dataDir)); err != nil {
		return types.InterestProfile{}, nil, fmt.Errorf("saving vector index: %w", err)
	}
	fmt.Fprintf(w, "embedded %d of %d papers, index written to %s\n", embedded, len(papers), vecindex.Path(dataDir))

	profile := deriveProfile(papers, cfg)
	profile.Centroid = idx.Centroid()
	return profile, idx, nil
}

// LoadProfile rebuilds the profile snapshot from the library store and
// the saved vector index. Returns vecindex.ErrIndexNotFound when no
// profile has been built yet.
func LoadProfile(ctx context.Context, store *Store, cfg types.ProfileConfig, dataDir string) (types.InterestProfile, *vecindex.Index, error) {
	idx, err := vecindex.Load(vecindex.Path(dataDir))
	if err != nil {
		return types.InterestProfile{}, nil, err
	}

	papers, err := store.All(ctx)
	if err != nil {
		return types.InterestProfile{}, nil, fmt.Errorf("loading library: %w", err)
	}

	profile := deriveProfile(papers, cfg)
	profile.Centroid = idx.Centroid()
	profile.BuiltAt = idx.CreatedAt
	return profile, idx, nil
}

// deriveProfile computes the statistical part of the profile: author and
// venue frequencies plus the whitelists. The automatic author whitelist
// admits authors appearing at least cfg.AuthorMinCount times; the
// user-curated lists are always included.
func deriveProfile(papers []types.LibraryPaper, cfg types.ProfileConfig) types.InterestProfile {
	profile := types.InterestProfile{
		AuthorCounts: make(map[string]int),
		VenueCounts:  make(map[string]int),
		PaperCount:   len(papers),
		BuiltAt:      time.Now().UTC(),
	}

	for _, p := range papers {
		for _, a := range p.Authors {
			if a = strings.TrimSpace(a); a != "" {
				profile.AuthorCounts[a]++
			}
		}
		if v := strings.TrimSpace(p.Venue); v != "" {
			profile.VenueCounts[v]++
		}
	}

	whitelist := make(map[string]struct{})
	for _, a := range cfg.WhitelistAuthors {
		if a = strings.TrimSpace(a); a != "" {
			whitelist[a] = struct{}{}
		}
	}
	if cfg.AuthorMinCount > 0 {
		for author, count := range profile.AuthorCounts {
			if count >= cfg.AuthorMinCount {
				whitelist[author] = struct{}{}
			}
		}
	}
	profile.WhitelistAuthors = sortedKeys(whitelist)

	venues := make(map[string]struct{})
	for _, v := range cfg.WhitelistVenues {
		if v = strings.TrimSpace(v); v != "" {
			venues[v] = struct{}{}
		}
	}
	profile.WhitelistVenues = sortedKeys(venues)

	return profile
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
