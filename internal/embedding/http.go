// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/pdiddy/paperwatch/internal/httputil"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// embedAPIBase is the embedding endpoint. Declared as a var so tests can
// substitute an httptest server.
var embedAPIBase = "https://api.voyageai.com/v1/embeddings"

// HTTPProvider calls a Voyage-style embeddings API.
type HTTPProvider struct {
	Client *http.Client
	cfg    types.EmbeddingConfig
}

// NewHTTPProvider returns a provider for the configured model and API key.
func NewHTTPProvider(client *http.Client, cfg types.EmbeddingConfig) (*HTTPProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required: set PAPERWATCH_EMBEDDING_API_KEY or embedding.api_key")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPProvider{Client: client, cfg: cfg}, nil
}

// ModelName returns the embedding model identifier.
func (p *HTTPProvider) ModelName() string { return p.cfg.Model }

// Dimensions returns the configured vector dimensionality.
func (p *HTTPProvider) Dimensions() int { return p.cfg.Dimensions }

// Embed requests an embedding for the text and L2-normalizes the result,
// so inner products against other normalized vectors are cosine
// similarities. Empty input is replaced with a placeholder because the
// API rejects empty strings.
func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		text = "[untitled]"
	}

	body, err := json.Marshal(embedRequest{
		Input: []string{text},
		Model: p.cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, embedAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embedding API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned HTTP %d", resp.StatusCode)
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embedding response: %w", err)
	}
	if len(er.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no vectors")
	}

	vec := toFloat32(er.Data[0].Embedding)
	if p.cfg.Dimensions > 0 && len(vec) != p.cfg.Dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(vec), p.cfg.Dimensions)
	}

	normalize(vec)
	return vec, nil
}

// Embedding API JSON structures.
type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// normalize scales v to unit L2 norm in place. Zero vectors are left as-is.
func normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
