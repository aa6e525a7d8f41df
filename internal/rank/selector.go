// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// Select applies the structural constraints to a fully scored and
// labeled batch: a hard recency window, an optional abstract
// requirement, deterministic ordering, a preprint budget, and the top-k
// cap. The input slice is not mutated.
//
// Ordering is composite score descending, then publication date
// descending, then identifier ascending, so equal runs over equal input
// produce byte-identical output.
func Select(scored []types.ScoredCandidate, cfg types.SelectionConfig, now time.Time, w io.Writer) []types.ScoredCandidate {
	eligible := make([]types.ScoredCandidate, 0, len(scored))

	var tooOld, noAbstract int
	cutoff := now.AddDate(0, 0, -cfg.RecentDays)
	for _, c := range scored {
		if cfg.RecentDays > 0 && (c.Published.IsZero() || c.Published.Before(cutoff)) {
			tooOld++
			continue
		}
		if cfg.RequireAbstract && c.Abstract == "" {
			noAbstract++
			continue
		}
		eligible = append(eligible, c)
	}
	if tooOld > 0 {
		fmt.Fprintf(w, "dropped %d candidates older than %d days\n", tooOld, cfg.RecentDays)
	}
	if noAbstract > 0 {
		fmt.Fprintf(w, "dropped %d candidates without an abstract\n", noAbstract)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if !a.Published.Equal(b.Published) {
			return a.Published.After(b.Published)
		}
		return a.Identifier < b.Identifier
	})

	// Walk the ordered list admitting papers until the top-k budget is
	// spent. A preprint is admitted only while the preprint share of the
	// result (counting it) stays within the configured ratio; skipped
	// preprints leave room for published work further down the list.
	selected := make([]types.ScoredCandidate, 0, len(eligible))
	preprints := 0
	for _, c := range eligible {
		if len(selected) >= cfg.TopK {
			break
		}
		if c.Preprint {
			if float64(preprints+1)/float64(len(selected)+1) > cfg.MaxPreprintRatio {
				continue
			}
			preprints++
		}
		selected = append(selected, c)
	}

	return selected
}
