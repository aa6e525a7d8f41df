// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding maps paper text to fixed-dimension vectors via a
// remote embedding API, with a content-hash cache so each unique text is
// embedded at most once per run and reused across runs.
package embedding

import "context"

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an L2-normalized embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensionality.
	Dimensions() int
}
