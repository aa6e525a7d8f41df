// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"math"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// weightSumTolerance is the permitted deviation of the signal weight sum
// from 1.0.
const weightSumTolerance = 1e-3

// ValidateConfig checks the ranking configuration before any candidate
// is fetched or scored, so a bad config fails the run immediately
// instead of surfacing as nonsense scores.
func ValidateConfig(cfg types.RankingConfig) error {
	if err := validateThresholds(cfg.Thresholds); err != nil {
		return err
	}
	if err := validateWeights(cfg.Weights); err != nil {
		return err
	}
	if err := validateSignals(cfg.Signals); err != nil {
		return err
	}
	if err := validateSelection(cfg.Selection); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

func validateThresholds(th types.ThresholdConfig) error {
	switch th.Mode {
	case types.ThresholdFixed:
		if th.MustRead < th.Consider {
			return fmt.Errorf("must_read threshold %.3f is below consider threshold %.3f", th.MustRead, th.Consider)
		}
	case types.ThresholdDynamic:
		for name, p := range map[string]float64{
			"must_read_percentile": th.MustReadPercentile,
			"consider_percentile":  th.ConsiderPercentile,
		} {
			if p < 0 || p > 100 {
				return fmt.Errorf("%s must be in [0, 100], got %.1f", name, p)
			}
		}
		if th.MustReadPercentile < th.ConsiderPercentile {
			return fmt.Errorf("must_read_percentile %.1f is below consider_percentile %.1f", th.MustReadPercentile, th.ConsiderPercentile)
		}
		if th.MinMustRead < th.MinConsider {
			return fmt.Errorf("min_must_read %.3f is below min_consider %.3f", th.MinMustRead, th.MinConsider)
		}
	default:
		return fmt.Errorf("unsupported threshold mode %q: use %q or %q", th.Mode, types.ThresholdFixed, types.ThresholdDynamic)
	}
	return nil
}

func validateWeights(w types.WeightConfig) error {
	for name, v := range map[string]float64{
		"similarity":      w.Similarity,
		"recency":         w.Recency,
		"citation":        w.Citation,
		"altmetric":       w.Altmetric,
		"journal_quality": w.JournalQuality,
		"whitelist_bonus": w.WhitelistBonus,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must be >= 0, got %.3f", name, v)
		}
	}
	sum := w.Similarity + w.Recency + w.Citation + w.Altmetric + w.JournalQuality
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("signal weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

func validateSignals(s types.SignalConfig) error {
	if s.HalfLifeDays <= 0 {
		return fmt.Errorf("half_life_days must be > 0, got %.1f", s.HalfLifeDays)
	}
	if s.CitationSaturation <= 0 {
		return fmt.Errorf("citation_saturation must be > 0, got %.1f", s.CitationSaturation)
	}
	if s.AltmetricSaturation <= 0 {
		return fmt.Errorf("altmetric_saturation must be > 0, got %.1f", s.AltmetricSaturation)
	}
	if s.NeutralQuality < 0 || s.NeutralQuality > 1 {
		return fmt.Errorf("neutral_quality must be in [0, 1], got %.3f", s.NeutralQuality)
	}
	if s.Neighbors < 0 {
		return fmt.Errorf("neighbors must be >= 0, got %d", s.Neighbors)
	}
	return nil
}

func validateSelection(s types.SelectionConfig) error {
	if s.RecentDays < 0 {
		return fmt.Errorf("recent_days must be >= 0, got %d", s.RecentDays)
	}
	if s.MaxPreprintRatio < 0 || s.MaxPreprintRatio > 1 {
		return fmt.Errorf("max_preprint_ratio must be in [0, 1], got %.3f", s.MaxPreprintRatio)
	}
	if s.TopK < 0 {
		return fmt.Errorf("top_k must be >= 0, got %d", s.TopK)
	}
	return nil
}
