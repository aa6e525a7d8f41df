// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"testing"

	"github.com/pdiddy/paperwatch/pkg/types"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.RankingConfig)
		wantErr bool
	}{
		{"defaults are valid", func(*types.RankingConfig) {}, false},
		{"unknown threshold mode", func(c *types.RankingConfig) {
			c.Thresholds.Mode = "adaptive"
		}, true},
		{"fixed must_read below consider", func(c *types.RankingConfig) {
			c.Thresholds.MustRead = 0.3
			c.Thresholds.Consider = 0.5
		}, true},
		{"dynamic percentile out of range", func(c *types.RankingConfig) {
			c.Thresholds.Mode = types.ThresholdDynamic
			c.Thresholds.MustReadPercentile = 120
		}, true},
		{"dynamic percentiles inverted", func(c *types.RankingConfig) {
			c.Thresholds.Mode = types.ThresholdDynamic
			c.Thresholds.MustReadPercentile = 50
			c.Thresholds.ConsiderPercentile = 90
		}, true},
		{"dynamic floors inverted", func(c *types.RankingConfig) {
			c.Thresholds.Mode = types.ThresholdDynamic
			c.Thresholds.MinMustRead = 0.3
			c.Thresholds.MinConsider = 0.5
		}, true},
		{"dynamic valid", func(c *types.RankingConfig) {
			c.Thresholds.Mode = types.ThresholdDynamic
		}, false},
		{"negative weight", func(c *types.RankingConfig) {
			c.Weights.Citation = -0.1
			c.Weights.Similarity = 0.7
		}, true},
		{"weights not summing to one", func(c *types.RankingConfig) {
			c.Weights.Similarity = 0.2
		}, true},
		{"weight sum within tolerance", func(c *types.RankingConfig) {
			c.Weights.Similarity = 0.5005
		}, false},
		{"zero half life", func(c *types.RankingConfig) {
			c.Signals.HalfLifeDays = 0
		}, true},
		{"zero citation saturation", func(c *types.RankingConfig) {
			c.Signals.CitationSaturation = 0
		}, true},
		{"neutral quality above one", func(c *types.RankingConfig) {
			c.Signals.NeutralQuality = 1.5
		}, true},
		{"negative recent days", func(c *types.RankingConfig) {
			c.Selection.RecentDays = -1
		}, true},
		{"preprint ratio above one", func(c *types.RankingConfig) {
			c.Selection.MaxPreprintRatio = 1.2
		}, true},
		{"negative top_k", func(c *types.RankingConfig) {
			c.Selection.TopK = -5
		}, true},
		{"negative workers", func(c *types.RankingConfig) {
			c.Workers = -1
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultConfig().Ranking
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
