// Package vectorstore is a brute-force nearest-neighbor index over document
// embeddings. It is filled once and read thereafter.
package vectorstore

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// #region store
// Store holds document vectors and their texts in insertion order.
type Store struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float64
	docs    []string
}

// New creates an empty store for vectors of length dim.
func New(dim int) *Store {
	return &Store{dim: dim}
}

// Dim returns the vector length the store accepts.
func (s *Store) Dim() int { return s.dim }

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Add appends a document and its vector.
func (s *Store) Add(vec []float64, doc string) error {
	if len(vec) != s.dim {
		return fmt.Errorf("vectorstore add: dimension %d, want %d", len(vec), s.dim)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, append([]float64(nil), vec...))
	s.docs = append(s.docs, doc)
	return nil
}

// #endregion store

// #region search
// Hit is one search result.
type Hit struct {
	Index int
	Doc   string
	Score float64
}

// Search ranks every stored document by cosine similarity to query and
// returns the best k. Equal scores keep insertion order. k larger than the
// store returns everything.
func (s *Store) Search(query []float64, k int) ([]Hit, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("vectorstore search: dimension %d, want %d", len(query), s.dim)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]Hit, len(s.docs))
	for i, v := range s.vectors {
		hits[i] = Hit{Index: i, Doc: s.docs[i], Score: CosineSimilarity(query, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// CosineSimilarity returns the cosine of the angle between a and b. A zero
// vector on either side scores 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// #endregion search
