// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperwatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivSourceConfig holds settings for the arXiv candidate source.
type ArxivSourceConfig struct {
	// Enabled controls whether the arXiv backend is used.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Categories are the arXiv subject categories to watch (e.g. "cs.LG").
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// DaysBack is the fetch window in complete past days (default 7).
	DaysBack int `json:"days_back" yaml:"days_back" mapstructure:"days_back"`

	// MaxResults caps the number of entries fetched per run (default 500).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// CrossrefSourceConfig holds settings for the Crossref candidate source.
type CrossrefSourceConfig struct {
	// Enabled controls whether the Crossref backend is used.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Mailto is included in requests per the Crossref polite-pool policy.
	Mailto string `json:"mailto" yaml:"mailto" mapstructure:"mailto"`

	// DaysBack is the fetch window in days (default 7).
	DaysBack int `json:"days_back" yaml:"days_back" mapstructure:"days_back"`

	// MaxResults caps the number of rows fetched per run (default 500).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// SourcesConfig groups the candidate source backends.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Arxiv    ArxivSourceConfig    `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Crossref CrossrefSourceConfig `json:"crossref" yaml:"crossref" mapstructure:"crossref"`

	// RequestsPerSecond bounds the polite request rate per backend (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the embedding model identifier (e.g. "voyage-3.5").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the embedding API. Usually supplied via
	// the PAPERWATCH_EMBEDDING_API_KEY environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Dimensions is the expected vector dimensionality (default 1024).
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`

	// CandidateTTLDays is the cache lifetime for candidate embeddings
	// (default 7). Library embeddings are kept indefinitely.
	CandidateTTLDays int `json:"candidate_ttl_days" yaml:"candidate_ttl_days" mapstructure:"candidate_ttl_days"`
}

// ThresholdMode selects how classification cutoffs are determined.
type ThresholdMode string

const (
	// ThresholdFixed uses the configured cutoffs as-is.
	ThresholdFixed ThresholdMode = "fixed"

	// ThresholdDynamic derives cutoffs from the batch score distribution,
	// clamped to configured minimums.
	ThresholdDynamic ThresholdMode = "dynamic"
)

// ThresholdConfig controls the threshold classifier.
type ThresholdConfig struct {
	// Mode is "fixed" or "dynamic".
	Mode ThresholdMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// MustRead is the fixed must_read cutoff (default 0.65).
	MustRead float64 `json:"must_read" yaml:"must_read" mapstructure:"must_read"`

	// Consider is the fixed consider cutoff (default 0.45).
	Consider float64 `json:"consider" yaml:"consider" mapstructure:"consider"`

	// MustReadPercentile is the dynamic-mode percentile for must_read
	// (default 95: the top 5% of the batch).
	MustReadPercentile float64 `json:"must_read_percentile" yaml:"must_read_percentile" mapstructure:"must_read_percentile"`

	// ConsiderPercentile is the dynamic-mode percentile for consider (default 70).
	ConsiderPercentile float64 `json:"consider_percentile" yaml:"consider_percentile" mapstructure:"consider_percentile"`

	// MinMustRead is the floor for the dynamic must_read cutoff (default 0.60).
	MinMustRead float64 `json:"min_must_read" yaml:"min_must_read" mapstructure:"min_must_read"`

	// MinConsider is the floor for the dynamic consider cutoff (default 0.40).
	MinConsider float64 `json:"min_consider" yaml:"min_consider" mapstructure:"min_consider"`
}

// WeightConfig holds the per-signal weights and the whitelist bonus. The
// core weights (similarity, recency, citation, journal quality) must be
// non-negative and sum to 1; this is enforced at configuration validation.
type WeightConfig struct {
	Similarity     float64 `json:"similarity" yaml:"similarity" mapstructure:"similarity"`
	Recency        float64 `json:"recency" yaml:"recency" mapstructure:"recency"`
	Citation       float64 `json:"citation" yaml:"citation" mapstructure:"citation"`
	Altmetric      float64 `json:"altmetric" yaml:"altmetric" mapstructure:"altmetric"`
	JournalQuality float64 `json:"journal_quality" yaml:"journal_quality" mapstructure:"journal_quality"`

	// WhitelistBonus is added once to the composite when any candidate
	// author or the venue is whitelisted. Additive, so low signals cannot
	// dilute it.
	WhitelistBonus float64 `json:"whitelist_bonus" yaml:"whitelist_bonus" mapstructure:"whitelist_bonus"`
}

// SignalConfig holds the constants for signal normalization.
type SignalConfig struct {
	// HalfLifeDays controls the recency decay rate (default 30).
	HalfLifeDays float64 `json:"half_life_days" yaml:"half_life_days" mapstructure:"half_life_days"`

	// CitationSaturation is the citation count that maps to a score of 1
	// (default 100).
	CitationSaturation float64 `json:"citation_saturation" yaml:"citation_saturation" mapstructure:"citation_saturation"`

	// AltmetricSaturation is the altmetric score that maps to 1 (default 50).
	AltmetricSaturation float64 `json:"altmetric_saturation" yaml:"altmetric_saturation" mapstructure:"altmetric_saturation"`

	// NeutralQuality is the journal quality assigned to venues absent from
	// the quality table (default 0.3), so unknown venues are not unduly
	// penalized.
	NeutralQuality float64 `json:"neutral_quality" yaml:"neutral_quality" mapstructure:"neutral_quality"`

	// Neighbors is how many nearest library papers the similarity scorer
	// retrieves from the vector index (default 1).
	Neighbors int `json:"neighbors" yaml:"neighbors" mapstructure:"neighbors"`

	// QualityTablePath points to the journal quality CSV. Empty disables
	// the table; every venue then scores NeutralQuality.
	QualityTablePath string `json:"quality_table_path,omitempty" yaml:"quality_table_path,omitempty" mapstructure:"quality_table_path"`
}

// SelectionConfig controls the result selector's structural constraints.
type SelectionConfig struct {
	// RecentDays drops candidates published more than this many days ago.
	// Zero disables the filter.
	RecentDays int `json:"recent_days" yaml:"recent_days" mapstructure:"recent_days"`

	// MaxPreprintRatio caps the fraction of preprints in the result, in [0,1].
	MaxPreprintRatio float64 `json:"max_preprint_ratio" yaml:"max_preprint_ratio" mapstructure:"max_preprint_ratio"`

	// TopK caps the result size. Zero returns no results.
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// RequireAbstract drops candidates without abstracts before selection.
	RequireAbstract bool `json:"require_abstract" yaml:"require_abstract" mapstructure:"require_abstract"`
}

// RankingConfig groups all ranking engine settings. Validated fail-fast
// before any candidate is scored.
type RankingConfig struct {
	Thresholds ThresholdConfig `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
	Weights    WeightConfig    `json:"weights" yaml:"weights" mapstructure:"weights"`
	Signals    SignalConfig    `json:"signals" yaml:"signals" mapstructure:"signals"`
	Selection  SelectionConfig `json:"selection" yaml:"selection" mapstructure:"selection"`

	// Workers bounds the scoring worker pool (default: number of CPUs).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// ProfileConfig holds settings for profile building.
type ProfileConfig struct {
	// AuthorMinCount is the library frequency at which an author joins the
	// whitelist automatically (default 10).
	AuthorMinCount int `json:"author_min_count" yaml:"author_min_count" mapstructure:"author_min_count"`

	// WhitelistAuthors are user-curated trusted authors.
	WhitelistAuthors []string `json:"whitelist_authors" yaml:"whitelist_authors" mapstructure:"whitelist_authors"`

	// WhitelistVenues are user-curated trusted venues.
	WhitelistVenues []string `json:"whitelist_venues" yaml:"whitelist_venues" mapstructure:"whitelist_venues"`
}

// Config groups all stage configurations for the pipeline.
type Config struct {
	// DataDir is the base directory for local state: the library database,
	// the vector index, and the embedding cache (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	Sources   SourcesConfig   `json:"sources" yaml:"sources" mapstructure:"sources"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Ranking   RankingConfig   `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Profile   ProfileConfig   `json:"profile" yaml:"profile" mapstructure:"profile"`
}

// DefaultConfig returns the configuration defaults applied before the
// config file and environment overrides.
func DefaultConfig() Config {
	return Config{
		DataDir: "data",
		Sources: SourcesConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "paperwatch/0.1",
			},
			Arxiv: ArxivSourceConfig{
				Enabled:    true,
				Categories: []string{"cs.LG"},
				DaysBack:   7,
				MaxResults: 500,
			},
			Crossref: CrossrefSourceConfig{
				Enabled:    true,
				DaysBack:   7,
				MaxResults: 500,
			},
			RequestsPerSecond: 1,
		},
		Embedding: EmbeddingConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "paperwatch/0.1",
			},
			Model:            "voyage-3.5",
			Dimensions:       1024,
			CandidateTTLDays: 7,
		},
		Ranking: RankingConfig{
			Thresholds: ThresholdConfig{
				Mode:               ThresholdFixed,
				MustRead:           0.65,
				Consider:           0.45,
				MustReadPercentile: 95,
				ConsiderPercentile: 70,
				MinMustRead:        0.60,
				MinConsider:        0.40,
			},
			Weights: WeightConfig{
				Similarity:     0.5,
				Recency:        0.3,
				Citation:       0.1,
				JournalQuality: 0.1,
				WhitelistBonus: 0.1,
			},
			Signals: SignalConfig{
				HalfLifeDays:        30,
				CitationSaturation:  100,
				AltmetricSaturation: 50,
				NeutralQuality:      0.3,
				Neighbors:           1,
			},
			Selection: SelectionConfig{
				RecentDays:       7,
				MaxPreprintRatio: 0.9,
				TopK:             20,
				RequireAbstract:  true,
			},
		},
		Profile: ProfileConfig{
			AuthorMinCount: 10,
		},
	}
}
