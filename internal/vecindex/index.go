// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vecindex provides the vector index over library paper embeddings
// that backs similarity scoring: nearest-neighbor search by cosine
// similarity plus the profile centroid.
package vecindex

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Errors returned by index operations.
var (
	ErrIndexNotFound      = errors.New("vector index not found")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrUnsupportedVersion = errors.New("unsupported index version")
)

// IndexFileName is the name of the index file inside the data directory.
const IndexFileName = "vectors.gob"

// currentVersion is the on-disk format version. Increment on breaking
// format changes.
const currentVersion = 1

// Hit is a nearest-neighbor search result. Score is raw cosine similarity
// in [-1,1].
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index holds embeddings for all library papers. Safe for concurrent
// reads once built; building is single-threaded.
type Index struct {
	Version    int       `json:"version"`
	ModelName  string    `json:"model_name"`
	Dimensions int       `json:"dimensions"`
	CreatedAt  time.Time `json:"created_at"`

	// Embeddings maps paper identifiers to their vectors.
	Embeddings map[string][]float32 `json:"-"`
}

// New creates an empty index for the given model.
func New(modelName string, dimensions int) *Index {
	return &Index{
		Version:    currentVersion,
		ModelName:  modelName,
		Dimensions: dimensions,
		CreatedAt:  time.Now().UTC(),
		Embeddings: make(map[string][]float32),
	}
}

// Add inserts or replaces the embedding for a paper.
func (idx *Index) Add(id string, vector []float32) error {
	if len(vector) != idx.Dimensions {
		return fmt.Errorf("%w: got %d, index expects %d", ErrDimensionMismatch, len(vector), idx.Dimensions)
	}
	idx.Embeddings[id] = vector
	return nil
}

// Len returns the number of indexed papers.
func (idx *Index) Len() int {
	return len(idx.Embeddings)
}

// Search returns the k most similar papers to the query vector, sorted by
// similarity descending with identifier as tiebreaker. Returns nil when
// the query dimension does not match or the index is empty.
func (idx *Index) Search(query []float32, k int) []Hit {
	if len(query) != idx.Dimensions || len(idx.Embeddings) == 0 || k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(idx.Embeddings))
	for id, emb := range idx.Embeddings {
		hits = append(hits, Hit{ID: id, Score: CosineSimilarity(query, emb)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Centroid returns the L2-normalized mean of all embeddings, or nil for
// an empty index.
func (idx *Index) Centroid() []float32 {
	if len(idx.Embeddings) == 0 {
		return nil
	}

	sum := make([]float64, idx.Dimensions)
	for _, emb := range idx.Embeddings {
		for i, v := range emb {
			sum[i] += float64(v)
		}
	}

	n := float64(len(idx.Embeddings))
	var norm float64
	for i := range sum {
		sum[i] /= n
		norm += sum[i] * sum[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return make([]float32, idx.Dimensions)
	}

	centroid := make([]float32, idx.Dimensions)
	for i := range sum {
		centroid[i] = float32(sum[i] / norm)
	}
	return centroid
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, or 0 for mismatched or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// Path returns the index file location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, IndexFileName)
}

// Save writes the index to path atomically (temp file, then rename).
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(idx); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing index file: %w", err)
	}

	return os.Rename(tmp, path)
}

// Load reads an index from path. Returns ErrIndexNotFound when the file
// does not exist and ErrUnsupportedVersion on a format mismatch.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var idx Index
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	if idx.Version != currentVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, idx.Version, currentVersion)
	}
	if idx.Embeddings == nil {
		idx.Embeddings = make(map[string][]float32)
	}
	return &idx, nil
}
