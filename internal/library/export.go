// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// WriteProfileYAML writes the profile snapshot as YAML. The embedding
// centroid is excluded; it lives in the vector index file.
func WriteProfileYAML(profile types.InterestProfile, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(profile); err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return enc.Close()
}

// ReadPapersYAML parses a library export: a YAML list of papers.
func ReadPapersYAML(r io.Reader) ([]types.LibraryPaper, error) {
	var papers []types.LibraryPaper
	if err := yaml.NewDecoder(r).Decode(&papers); err != nil {
		return nil, fmt.Errorf("parsing library file: %w", err)
	}
	return papers, nil
}
