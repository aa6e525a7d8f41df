// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperwatch pipeline:
// candidate papers fetched from academic sources, scored recommendation
// records, the user interest profile, and per-stage configuration.
package types

import "time"

// Label classifies a scored candidate into a confidence tier.
type Label string

const (
	LabelMustRead Label = "must_read"
	LabelConsider Label = "consider"
	LabelIgnore   Label = "ignore"
)

// CandidatePaper is a newly published paper under consideration for
// recommendation. Candidate Source backends produce these; the record is
// immutable once it enters the ranking engine.
type CandidatePaper struct {
	// Identifier is the canonical ID from the source (DOI, arXiv ID, or a
	// hash fallback when the source provides neither).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract. May be empty; similarity is then
	// computed from the title alone.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the publication venue (journal or conference). Empty for
	// most preprints.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Published is the publication or preprint date.
	Published time.Time `json:"published" yaml:"published"`

	// CitationCount is the raw citation count if the source reports one.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// AltmetricScore is the raw altmetric attention score if available.
	AltmetricScore float64 `json:"altmetric_score,omitempty" yaml:"altmetric_score,omitempty"`

	// Preprint marks unreviewed preprint-server entries (arXiv and friends).
	Preprint bool `json:"preprint" yaml:"preprint"`

	// Source identifies which backend produced this candidate
	// (e.g. "arxiv", "crossref").
	Source string `json:"source" yaml:"source"`
}

// ScoredCandidate is a CandidatePaper with its normalized signal scores,
// composite score, and assigned label. Produced by the ranking engine and
// owned by the caller for output stages; the engine never persists it.
type ScoredCandidate struct {
	CandidatePaper `yaml:",inline"`

	// Similarity is the semantic similarity to the interest profile, in [0,1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Recency is the exponential-decay freshness score, in [0,1].
	Recency float64 `json:"recency" yaml:"recency"`

	// Citation is the log-compressed citation score, in [0,1].
	Citation float64 `json:"citation" yaml:"citation"`

	// Altmetric is the log-compressed altmetric score, in [0,1].
	Altmetric float64 `json:"altmetric" yaml:"altmetric"`

	// JournalQuality is the venue quality score, in [0,1].
	JournalQuality float64 `json:"journal_quality" yaml:"journal_quality"`

	// WhitelistBonus is the additive bonus for whitelisted authors or
	// venues. Zero when no whitelist entry matched.
	WhitelistBonus float64 `json:"whitelist_bonus" yaml:"whitelist_bonus"`

	// Composite is the weighted sum of the signals plus the whitelist
	// bonus. Non-negative; the bonus may push it above 1.
	Composite float64 `json:"composite" yaml:"composite"`

	// Label is the assigned confidence tier.
	Label Label `json:"label" yaml:"label"`
}
