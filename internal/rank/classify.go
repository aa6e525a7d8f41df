// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"sort"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// ComputedThresholds holds the cutoffs actually applied to a batch,
// after any dynamic derivation and clamping.
type ComputedThresholds struct {
	// Mode records whether the cutoffs were fixed or derived from the
	// batch distribution.
	Mode types.ThresholdMode `json:"mode" yaml:"mode"`

	// MustRead is the inclusive lower bound for the must-read label.
	MustRead float64 `json:"must_read" yaml:"must_read"`

	// Consider is the inclusive lower bound for the consider label.
	Consider float64 `json:"consider" yaml:"consider"`
}

// ComputeThresholds derives the cutoffs for a batch. In fixed mode the
// configured cutoffs are used as-is. In dynamic mode the cutoffs are
// percentiles of the batch's composite scores, clamped below by the
// configured minimums; batches of one or zero scores have no meaningful
// distribution and fall back to the minimums directly. The must-read
// cutoff never ends up below the consider cutoff.
func ComputeThresholds(scores []float64, cfg types.ThresholdConfig) ComputedThresholds {
	if cfg.Mode == types.ThresholdFixed {
		return ComputedThresholds{
			Mode:     types.ThresholdFixed,
			MustRead: cfg.MustRead,
			Consider: cfg.Consider,
		}
	}

	th := ComputedThresholds{Mode: types.ThresholdDynamic}
	if len(scores) <= 1 {
		th.MustRead = cfg.MinMustRead
		th.Consider = cfg.MinConsider
	} else {
		th.MustRead = math.Max(percentile(scores, cfg.MustReadPercentile), cfg.MinMustRead)
		th.Consider = math.Max(percentile(scores, cfg.ConsiderPercentile), cfg.MinConsider)
	}
	if th.MustRead < th.Consider {
		th.MustRead = th.Consider
	}
	return th
}

// Classify assigns a label to every candidate in place. Both cutoffs are
// inclusive: a composite exactly at the must-read cutoff is must-read.
func Classify(scored []types.ScoredCandidate, th ComputedThresholds) {
	for i := range scored {
		switch {
		case scored[i].Composite >= th.MustRead:
			scored[i].Label = types.LabelMustRead
		case scored[i].Composite >= th.Consider:
			scored[i].Label = types.LabelConsider
		default:
			scored[i].Label = types.LabelIgnore
		}
	}
}

// percentile computes the p-th percentile of scores using linear
// interpolation between the two nearest ranks. The input is not mutated.
func percentile(scores []float64, p float64) float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
