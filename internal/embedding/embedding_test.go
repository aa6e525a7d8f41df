// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperwatch/pkg/types"
)

func testEmbedCfg() types.EmbeddingConfig {
	return types.EmbeddingConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "test/0.1",
		},
		Model:      "voyage-3.5",
		APIKey:     "test-key",
		Dimensions: 3,
	}
}

// newEmbedServer serves a fixed vector for any input and counts calls.
func newEmbedServer(t *testing.T, vec []float64, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Input)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		fmt.Fprintf(w, `{"data":[{"embedding":[%f,%f,%f]}],"model":%q}`,
			vec[0], vec[1], vec[2], req.Model)
	}))
}

func TestHTTPProviderEmbed(t *testing.T) {
	var calls int32
	ts := newEmbedServer(t, []float64{3, 0, 4}, &calls)
	defer ts.Close()

	old := embedAPIBase
	embedAPIBase = ts.URL
	defer func() { embedAPIBase = old }()

	p, err := NewHTTPProvider(ts.Client(), testEmbedCfg())
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "attention is all you need")
	require.NoError(t, err)
	require.Len(t, vec, 3)

	// Output is L2-normalized: (3,0,4) -> (0.6, 0, 0.8).
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	assert.InDelta(t, 0.0, float64(vec[1]), 1e-6)
	assert.InDelta(t, 0.8, float64(vec[2]), 1e-6)

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestHTTPProviderRequiresKey(t *testing.T) {
	cfg := testEmbedCfg()
	cfg.APIKey = ""
	_, err := NewHTTPProvider(nil, cfg)
	assert.Error(t, err)
}

func TestHTTPProviderDimensionCheck(t *testing.T) {
	var calls int32
	ts := newEmbedServer(t, []float64{1, 0, 0}, &calls)
	defer ts.Close()

	old := embedAPIBase
	embedAPIBase = ts.URL
	defer func() { embedAPIBase = old }()

	cfg := testEmbedCfg()
	cfg.Dimensions = 8
	p, err := NewHTTPProvider(ts.Client(), cfg)
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "text")
	assert.ErrorContains(t, err, "dimensions")
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	hash := ContentHash("voyage-3.5", "some text")

	_, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []float32{0.1, 0.2, 0.3}
	require.NoError(t, cache.Put(ctx, hash, "voyage-3.5", want, 0))

	got, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCacheExpiry(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	hash := ContentHash("voyage-3.5", "expiring")

	// Negative TTL via direct insert with a past expiry.
	_, err = cache.db.ExecContext(ctx,
		`INSERT INTO embeddings (content_hash, model, vector, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		hash, "voyage-3.5", encodeVector([]float32{1}),
		time.Now().UTC().Format(time.RFC3339),
		time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	)
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should be a miss")

	removed, err := cache.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestContentHashDistinguishesModels(t *testing.T) {
	a := ContentHash("model-a", "text")
	b := ContentHash("model-b", "text")
	assert.NotEqual(t, a, b)
}

func TestCachingProviderHitsCache(t *testing.T) {
	var calls int32
	ts := newEmbedServer(t, []float64{1, 0, 0}, &calls)
	defer ts.Close()

	old := embedAPIBase
	embedAPIBase = ts.URL
	defer func() { embedAPIBase = old }()

	base, err := NewHTTPProvider(ts.Client(), testEmbedCfg())
	require.NoError(t, err)

	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	p := NewCachingProvider(base, cache, 7, io.Discard)
	ctx := context.Background()

	first, err := p.Embed(ctx, "cached text")
	require.NoError(t, err)
	second, err := p.Embed(ctx, "cached text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second embed should come from cache")
}

func TestCachingProviderDegradesOnCacheFailure(t *testing.T) {
	var calls int32
	ts := newEmbedServer(t, []float64{0, 1, 0}, &calls)
	defer ts.Close()

	old := embedAPIBase
	embedAPIBase = ts.URL
	defer func() { embedAPIBase = old }()

	base, err := NewHTTPProvider(ts.Client(), testEmbedCfg())
	require.NoError(t, err)

	cache, err := OpenCache(t.TempDir())
	require.NoError(t, err)

	// A closed cache makes both Get and Put fail. The provider vector
	// must still come through, with the write failure only warned about.
	require.NoError(t, cache.Close())

	var warnings bytes.Buffer
	p := NewCachingProvider(base, cache, 7, &warnings)

	vec, err := p.Embed(context.Background(), "uncacheable text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, vec)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, warnings.String(), "caching embedding")
}
