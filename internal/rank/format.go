// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

const titleColumnWidth = 60

// FormatTable writes the result set as an aligned text table followed by
// the applied thresholds and run stats.
func FormatTable(result Result, w io.Writer) {
	if len(result.Selected) == 0 {
		fmt.Fprintln(w, "no candidates selected")
	} else {
		fmt.Fprintf(w, "%-4s %-9s %-6s %-*s %-10s %s\n",
			"#", "LABEL", "SCORE", titleColumnWidth, "TITLE", "DATE", "SOURCE")
		for i, c := range result.Selected {
			date := ""
			if !c.Published.IsZero() {
				date = c.Published.Format("2006-01-02")
			}
			source := c.Source
			if c.Preprint {
				source += " (preprint)"
			}
			fmt.Fprintf(w, "%-4d %-9s %-6.3f %-*s %-10s %s\n",
				i+1, c.Label, c.Composite, titleColumnWidth, truncate(c.Title, titleColumnWidth), date, source)
		}
	}

	fmt.Fprintf(w, "\nthresholds (%s): must-read >= %.3f, consider >= %.3f\n",
		result.Thresholds.Mode, result.Thresholds.MustRead, result.Thresholds.Consider)
	fmt.Fprintf(w, "fetched %d, after dedupe %d, selected %d",
		result.Stats.Fetched, result.Stats.AfterDedupe, result.Stats.Selected)
	if result.Stats.SimilarityFailures > 0 {
		fmt.Fprintf(w, " (%d similarity failures)", result.Stats.SimilarityFailures)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the result as indented JSON.
func FormatJSON(result Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result as JSON: %w", err)
	}
	return nil
}

// FormatYAML writes the result as YAML.
func FormatYAML(result Result, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result as YAML: %w", err)
	}
	return enc.Close()
}

// truncate shortens s to at most width runes, appending an ellipsis when
// anything was cut.
func truncate(s string, width int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width-3]) + "..."
}
