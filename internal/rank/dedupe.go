// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank implements the candidate ranking engine: deduplication
// against the library, multi-signal scoring, threshold classification,
// and structural result selection.
package rank

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// identifier prefixes stripped during normalization, lowercase.
var identifierPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
	"https://arxiv.org/abs/",
	"http://arxiv.org/abs/",
	"arxiv:",
}

// versionedArxivPattern matches a bare arXiv ID with a version suffix
// (e.g. "2301.07041v2").
var versionedArxivPattern = regexp.MustCompile(`^(\d{4}\.\d{4,5})v\d+$`)

// NormalizeIdentifier canonicalizes a paper identifier for equality
// matching: lowercased, URL and scheme prefixes stripped, and arXiv
// version suffixes removed so "arXiv:2301.07041v2" and
// "https://arxiv.org/abs/2301.07041" collide.
func NormalizeIdentifier(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	for _, prefix := range identifierPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if m := versionedArxivPattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	return s
}

// Signature returns the fuzzy dedup key for a paper: normalized title
// joined with the first author's surname. It catches the same work under
// different identifiers, typically a preprint and its published version.
// Returns "" when the title normalizes to nothing.
func Signature(title string, authors []string) string {
	t := normalizeTitle(title)
	if t == "" {
		return ""
	}
	return t + "|" + firstAuthorSurname(authors)
}

// normalizeTitle returns a lowercased, punctuation-stripped,
// whitespace-collapsed version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// firstAuthorSurname extracts the lowercased surname of the first author.
// Handles both "Given Surname" and "Surname, Given" forms.
func firstAuthorSurname(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	name := authors[0]
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// Dedupe filters out candidates already present in the library, matching
// first by normalized identifier and then by fuzzy signature. Malformed
// candidates with neither an identifier nor a title are dropped with a
// diagnostic. The input and the library sets are never mutated, so
// re-running Dedupe on its own output yields the same set.
func Dedupe(candidates []types.CandidatePaper, libraryIDs, librarySignatures map[string]struct{}, w io.Writer) []types.CandidatePaper {
	kept := make([]types.CandidatePaper, 0, len(candidates))

	for _, c := range candidates {
		if strings.TrimSpace(c.Identifier) == "" && strings.TrimSpace(c.Title) == "" {
			fmt.Fprintf(w, "warning: dropping malformed candidate from %s: no identifier or title\n", c.Source)
			continue
		}

		if id := NormalizeIdentifier(c.Identifier); id != "" {
			if _, ok := libraryIDs[id]; ok {
				continue
			}
		}

		if sig := Signature(c.Title, c.Authors); sig != "" {
			if _, ok := librarySignatures[sig]; ok {
				continue
			}
		}

		kept = append(kept, c)
	}

	return kept
}
