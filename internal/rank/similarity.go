// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"

	"github.com/pdiddy/paperwatch/internal/vecindex"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// Embedder is the engine's view of the embedding provider. Implementations
// must be safe for concurrent use.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the engine's view of the nearest-neighbor index over the
// reader's library. Search must not mutate index state.
type VectorIndex interface {
	// Search returns up to k nearest library papers by cosine similarity,
	// best first.
	Search(vector []float32, k int) []vecindex.Hit
}

// embedText composes the text embedded for a candidate: title plus
// abstract when present.
func embedText(c types.CandidatePaper) string {
	if c.Abstract == "" {
		return c.Title
	}
	return c.Title + "\n\n" + c.Abstract
}

// scoreSimilarity computes the similarity signal for one candidate: the
// greater of cosine similarity against the profile centroid and the best
// index neighbor, mapped from [-1, 1] to [0, 1]. Embedding failures
// degrade to 0 rather than aborting the batch.
func (r *Ranker) scoreSimilarity(ctx context.Context, c types.CandidatePaper, warnf func(format string, args ...any)) float64 {
	if len(r.profile.Centroid) == 0 && r.index == nil {
		return 0
	}

	vec, err := r.embedder.Embed(ctx, embedText(c))
	if err != nil {
		warnf("warning: embedding failed for %s: %v", c.Identifier, err)
		return 0
	}

	best := -1.0
	if len(r.profile.Centroid) > 0 {
		best = vecindex.CosineSimilarity(vec, r.profile.Centroid)
	}
	if r.index != nil {
		neighbors := r.cfg.Signals.Neighbors
		if neighbors < 1 {
			neighbors = 1
		}
		if hits := r.index.Search(vec, neighbors); len(hits) > 0 && hits[0].Score > best {
			best = hits[0].Score
		}
	}

	score := (best + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
