// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"math"
	"path/filepath"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched lengths", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSearchOrdering(t *testing.T) {
	idx := New("test-model", 2)
	idx.Add("far", []float32{0, 1})
	idx.Add("near", []float32{1, 0.1})
	idx.Add("exact", []float32{1, 0})

	hits := idx.Search([]float32{1, 0}, 2)
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].ID != "exact" {
		t.Errorf("hits[0] = %q, want exact", hits[0].ID)
	}
	if hits[1].ID != "near" {
		t.Errorf("hits[1] = %q, want near", hits[1].ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores out of order: %f < %f", hits[0].Score, hits[1].Score)
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx := New("test-model", 2)
	idx.Add("a", []float32{1, 0})

	if hits := idx.Search([]float32{1, 0, 0}, 1); hits != nil {
		t.Errorf("expected nil for mismatched query, got %v", hits)
	}
}

func TestAddDimensionMismatch(t *testing.T) {
	idx := New("test-model", 2)
	if err := idx.Add("a", []float32{1, 0, 0}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestCentroid(t *testing.T) {
	idx := New("test-model", 2)
	if c := idx.Centroid(); c != nil {
		t.Errorf("empty index centroid = %v, want nil", c)
	}

	idx.Add("a", []float32{1, 0})
	idx.Add("b", []float32{0, 1})

	c := idx.Centroid()
	if len(c) != 2 {
		t.Fatalf("len(centroid) = %d, want 2", len(c))
	}
	// Mean is (0.5, 0.5); normalized to (1/sqrt2, 1/sqrt2).
	want := float32(1 / math.Sqrt2)
	if math.Abs(float64(c[0]-want)) > 1e-6 || math.Abs(float64(c[1]-want)) > 1e-6 {
		t.Errorf("centroid = %v, want [%f %f]", c, want, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), IndexFileName)

	idx := New("test-model", 3)
	idx.Add("2301.07041", []float32{1, 0, 0})
	idx.Add("10.1000-x", []float32{0, 1, 0})

	if err := idx.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.ModelName != "test-model" || loaded.Dimensions != 3 {
		t.Errorf("loaded metadata = %q/%d", loaded.ModelName, loaded.Dimensions)
	}
	if loaded.Len() != 2 {
		t.Errorf("loaded.Len() = %d, want 2", loaded.Len())
	}

	hits := loaded.Search([]float32{1, 0, 0}, 1)
	if len(hits) != 1 || hits[0].ID != "2301.07041" {
		t.Errorf("Search after load = %v", hits)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gob"))
	if err != ErrIndexNotFound {
		t.Errorf("err = %v, want ErrIndexNotFound", err)
	}
}
