// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"strings"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// Signals holds the normalized per-candidate signal scores, each in [0, 1].
type Signals struct {
	Similarity     float64
	Recency        float64
	Citation       float64
	Altmetric      float64
	JournalQuality float64
}

// Aggregate combines normalized signals into a composite score: the
// weighted sum of the signals plus the whitelist bonus. With weights
// summing to 1 the weighted part stays in [0, 1]; the bonus can push the
// composite above 1, which is intentional, since relative order is what
// matters downstream.
func Aggregate(s Signals, w types.WeightConfig, whitelistBonus float64) float64 {
	return w.Similarity*s.Similarity +
		w.Recency*s.Recency +
		w.Citation*s.Citation +
		w.Altmetric*s.Altmetric +
		w.JournalQuality*s.JournalQuality +
		whitelistBonus
}

// whitelistBonus returns the configured bonus when any author or the
// venue of the candidate is whitelisted. The bonus is granted at most
// once per paper regardless of how many matches occur.
func (r *Ranker) whitelistBonus(c types.CandidatePaper) float64 {
	if r.cfg.Weights.WhitelistBonus == 0 {
		return 0
	}
	for _, author := range c.Authors {
		if _, ok := r.wlAuthors[strings.ToLower(strings.TrimSpace(author))]; ok {
			return r.cfg.Weights.WhitelistBonus
		}
	}
	if _, ok := r.wlVenues[normalizeVenue(c.Venue)]; ok {
		return r.cfg.Weights.WhitelistBonus
	}
	return 0
}
