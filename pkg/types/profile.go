// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LibraryPaper is a paper already present in the user's reference library.
// The profile builder derives the interest profile from these records, and
// the deduplicator filters candidates against them.
type LibraryPaper struct {
	// Identifier is the canonical ID (DOI or arXiv ID where known).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract, used for the profile embedding.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the publication venue.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Published is the publication date.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// Source records where the library record came from (e.g. "import").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// InterestProfile is a read-only snapshot of the user's research interests,
// distilled from the reference library. The ranking engine holds exactly one
// snapshot per run and never mutates it.
type InterestProfile struct {
	// Centroid is the L2-normalized mean embedding of the library papers.
	// Empty when no profile has been built.
	Centroid []float32 `json:"-" yaml:"-"`

	// AuthorCounts maps author name to the number of library papers they
	// appear on.
	AuthorCounts map[string]int `json:"author_counts" yaml:"author_counts"`

	// VenueCounts maps venue name to the number of library papers
	// published there.
	VenueCounts map[string]int `json:"venue_counts" yaml:"venue_counts"`

	// WhitelistAuthors are trusted authors whose new papers receive the
	// whitelist bonus: the user-curated list plus authors appearing at
	// least ProfileConfig.AuthorMinCount times in the library.
	WhitelistAuthors []string `json:"whitelist_authors" yaml:"whitelist_authors"`

	// WhitelistVenues are trusted venues whose papers receive the
	// whitelist bonus.
	WhitelistVenues []string `json:"whitelist_venues" yaml:"whitelist_venues"`

	// PaperCount is the number of library papers the profile was built from.
	PaperCount int `json:"paper_count" yaml:"paper_count"`

	// BuiltAt is when the profile was last built or refreshed.
	BuiltAt time.Time `json:"built_at" yaml:"built_at"`
}
