package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 1}))
}

func TestSearchRanksAndTruncates(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Add([]float64{1, 0}, "east"))
	require.NoError(t, s.Add([]float64{0, 1}, "north"))
	require.NoError(t, s.Add([]float64{1, 1}, "northeast"))

	hits, err := s.Search([]float64{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].Doc)
	assert.Equal(t, "northeast", hits[1].Doc)
}

func TestSearchKLargerThanStore(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Add([]float64{0, 1}, "a"))
	require.NoError(t, s.Add([]float64{1, 0}, "b"))

	hits, err := s.Search([]float64{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].Doc)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := New(2)
	for _, d := range []string{"first", "second", "third"} {
		require.NoError(t, s.Add([]float64{0, 0}, d))
	}
	hits, err := s.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	var docs []string
	for _, h := range hits {
		docs = append(docs, h.Doc)
		assert.Zero(t, h.Score)
	}
	assert.Equal(t, []string{"first", "second", "third"}, docs)
}

func TestDimensionMismatch(t *testing.T) {
	s := New(3)
	assert.Error(t, s.Add([]float64{1}, "x"))
	_, err := s.Search([]float64{1, 2}, 1)
	assert.Error(t, err)
}

func TestEmptyStore(t *testing.T) {
	s := New(0)
	hits, err := s.Search(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 0, s.Len())
}
