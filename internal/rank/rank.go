// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// Membership is the engine's view of the library store: the sets of
// normalized identifiers and fuzzy signatures of papers the reader
// already has.
type Membership interface {
	IdentifierSet(ctx context.Context) (map[string]struct{}, error)
	SignatureSet(ctx context.Context) (map[string]struct{}, error)
}

// RunStats summarizes what happened to the batch at each stage.
type RunStats struct {
	// Fetched is the number of candidates handed to the engine.
	Fetched int `json:"fetched" yaml:"fetched"`

	// AfterDedupe is the number remaining after library deduplication.
	AfterDedupe int `json:"after_dedupe" yaml:"after_dedupe"`

	// SimilarityFailures counts candidates whose embedding failed and
	// whose similarity degraded to zero.
	SimilarityFailures int `json:"similarity_failures" yaml:"similarity_failures"`

	// Selected is the size of the final result set.
	Selected int `json:"selected" yaml:"selected"`
}

// Result is the outcome of a ranking run.
type Result struct {
	// Selected holds the final ordered result set.
	Selected []types.ScoredCandidate `json:"selected" yaml:"selected"`

	// Thresholds records the cutoffs applied to this batch.
	Thresholds ComputedThresholds `json:"thresholds" yaml:"thresholds"`

	// Stats summarizes the run.
	Stats RunStats `json:"stats" yaml:"stats"`
}

// Ranker scores and ranks candidate papers against a reader's interest
// profile. A Ranker is safe for concurrent use once constructed.
type Ranker struct {
	cfg      types.RankingConfig
	profile  types.InterestProfile
	embedder Embedder
	index    VectorIndex
	quality  QualityTable

	wlAuthors map[string]struct{}
	wlVenues  map[string]struct{}

	now func() time.Time
}

// NewRanker validates the configuration and builds a Ranker. The index
// may be nil, in which case similarity falls back to the profile
// centroid alone; the quality table may be nil, in which case every
// venue scores the neutral default.
func NewRanker(cfg types.RankingConfig, profile types.InterestProfile, embedder Embedder, index VectorIndex, quality QualityTable) (*Ranker, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid ranking config: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	r := &Ranker{
		cfg:       cfg,
		profile:   profile,
		embedder:  embedder,
		index:     index,
		quality:   quality,
		wlAuthors: make(map[string]struct{}, len(profile.WhitelistAuthors)),
		wlVenues:  make(map[string]struct{}, len(profile.WhitelistVenues)),
		now:       time.Now,
	}
	for _, a := range profile.WhitelistAuthors {
		r.wlAuthors[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	for _, v := range profile.WhitelistVenues {
		r.wlVenues[normalizeVenue(v)] = struct{}{}
	}
	return r, nil
}

// Run executes the full pipeline on a batch: dedupe against the
// library, score every survivor concurrently, classify against the
// batch thresholds, and apply structural selection. Progress and
// per-candidate warnings go to w. A library store failure or context
// cancellation aborts the whole run; partial results are never
// returned.
func (r *Ranker) Run(ctx context.Context, candidates []types.CandidatePaper, library Membership, w io.Writer) (Result, error) {
	ids, err := library.IdentifierSet(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("library membership unavailable: %w", err)
	}
	sigs, err := library.SignatureSet(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("library membership unavailable: %w", err)
	}

	deduped := Dedupe(candidates, ids, sigs, w)
	fmt.Fprintf(w, "deduplicated %d candidates to %d\n", len(candidates), len(deduped))

	now := r.now()
	scored, failures, err := r.scoreAll(ctx, deduped, now, w)
	if err != nil {
		return Result{}, err
	}

	composites := make([]float64, len(scored))
	for i, s := range scored {
		composites[i] = s.Composite
	}
	thresholds := ComputeThresholds(composites, r.cfg.Thresholds)
	Classify(scored, thresholds)

	selected := Select(scored, r.cfg.Selection, now, w)

	return Result{
		Selected:   selected,
		Thresholds: thresholds,
		Stats: RunStats{
			Fetched:            len(candidates),
			AfterDedupe:        len(deduped),
			SimilarityFailures: failures,
			Selected:           len(selected),
		},
	}, nil
}

// scoreAll scores every candidate using a bounded worker pool. Results
// land in their input positions, so the output order is independent of
// worker scheduling. Warnings are buffered per candidate and flushed in
// input order once the pool drains.
func (r *Ranker) scoreAll(ctx context.Context, candidates []types.CandidatePaper, now time.Time, w io.Writer) ([]types.ScoredCandidate, int, error) {
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	scored := make([]types.ScoredCandidate, len(candidates))
	warnings := make([]string, len(candidates))
	failed := make([]bool, len(candidates))

	indexes := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				warnf := func(format string, args ...any) {
					warnings[i] = fmt.Sprintf(format, args...)
					failed[i] = true
				}
				scored[i] = r.scoreOne(ctx, candidates[i], now, warnf)
			}
		}()
	}

	var runErr error
feed:
	for i := range candidates {
		select {
		case indexes <- i:
		case <-ctx.Done():
			runErr = ctx.Err()
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if runErr != nil {
		return nil, 0, fmt.Errorf("ranking aborted: %w", runErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("ranking aborted: %w", err)
	}

	failures := 0
	for i, warning := range warnings {
		if warning != "" {
			fmt.Fprintln(w, warning)
		}
		if failed[i] {
			failures++
		}
	}
	return scored, failures, nil
}

// scoreOne computes all signals and the composite for a single candidate.
func (r *Ranker) scoreOne(ctx context.Context, c types.CandidatePaper, now time.Time, warnf func(format string, args ...any)) types.ScoredCandidate {
	sc := types.ScoredCandidate{
		CandidatePaper: c,
		Similarity:     r.scoreSimilarity(ctx, c, warnf),
		Recency:        RecencyScore(c.Published, now, r.cfg.Signals.HalfLifeDays),
		Citation:       SaturationScore(float64(c.CitationCount), r.cfg.Signals.CitationSaturation),
		Altmetric:      SaturationScore(c.AltmetricScore, r.cfg.Signals.AltmetricSaturation),
		JournalQuality: r.quality.Score(c.Venue, r.cfg.Signals.NeutralQuality),
		WhitelistBonus: r.whitelistBonus(c),
	}
	sc.Composite = Aggregate(Signals{
		Similarity:     sc.Similarity,
		Recency:        sc.Recency,
		Citation:       sc.Citation,
		Altmetric:      sc.Altmetric,
		JournalQuality: sc.JournalQuality,
	}, r.cfg.Weights, sc.WhitelistBonus)
	return sc
}
