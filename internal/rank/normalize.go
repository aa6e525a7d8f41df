// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// impactFactorCeiling is the impact factor mapped to a quality score of
// 1.0; higher factors are clamped.
const impactFactorCeiling = 25.0

// RecencyScore maps a publication date to [0, 1] with exponential decay:
// exp(-ageDays / halfLifeDays). Future-dated papers are treated as age
// zero. A zero date or non-positive half-life yields 0.
func RecencyScore(published, now time.Time, halfLifeDays float64) float64 {
	if published.IsZero() || halfLifeDays <= 0 {
		return 0
	}
	ageDays := now.Sub(published).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / halfLifeDays)
}

// SaturationScore log-compresses a non-negative raw count into [0, 1]:
// log1p(raw) / log1p(saturation), clamped at 1. Values at or above the
// saturation point all score 1, so a moderately cited paper is not
// drowned out by a runaway hit.
func SaturationScore(raw, saturation float64) float64 {
	if raw <= 0 || saturation <= 0 {
		return 0
	}
	s := math.Log1p(raw) / math.Log1p(saturation)
	if s > 1 {
		return 1
	}
	return s
}

// QualityTable maps normalized venue names to quality scores in [0, 1].
type QualityTable map[string]float64

// Score returns the quality score for a venue, or the neutral default
// when the venue is unknown or empty.
func (t QualityTable) Score(venue string, neutral float64) float64 {
	if t == nil {
		return neutral
	}
	if q, ok := t[normalizeVenue(venue)]; ok {
		return q
	}
	return neutral
}

// LoadQualityTable reads a venue quality CSV with "venue" and
// "impact_factor" columns. Impact factors are mapped to [0, 1] via
// log(f+1) / log(26) and clamped at 1. Rows with a missing or
// unparseable factor are skipped. An empty path yields a nil table,
// which scores every venue at the neutral default.
func LoadQualityTable(path string) (QualityTable, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening quality table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing quality table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("quality table %s is empty", path)
	}

	venueCol, factorCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "venue":
			venueCol = i
		case "impact_factor":
			factorCol = i
		}
	}
	if venueCol < 0 || factorCol < 0 {
		return nil, fmt.Errorf("quality table %s: missing venue or impact_factor column", path)
	}

	table := make(QualityTable)
	for _, row := range records[1:] {
		if venueCol >= len(row) || factorCol >= len(row) {
			continue
		}
		venue := normalizeVenue(row[venueCol])
		if venue == "" {
			continue
		}
		factor, err := strconv.ParseFloat(strings.TrimSpace(row[factorCol]), 64)
		if err != nil || factor < 0 {
			continue
		}
		q := math.Log(factor+1) / math.Log(impactFactorCeiling+1)
		if q > 1 {
			q = 1
		}
		table[venue] = q
	}

	return table, nil
}

func normalizeVenue(venue string) string {
	return strings.ToLower(strings.TrimSpace(venue))
}
