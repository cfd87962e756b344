package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region fixtures
var corpus = []Document{
	{Name: "01_quadratic.txt", Text: "The quadratic formula gives the roots of a quadratic equation."},
	{Name: "02_derivative.txt", Text: "The power rule: the derivative of x^n is n x^(n-1)."},
	{Name: "03_probability.txt", Text: "Probability of independent events multiplies."},
}

func writeCorpus(t *testing.T, docs []Document) string {
	t.Helper()
	dir := t.TempDir()
	for _, d := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, d.Name), []byte(d.Text), 0o644))
	}
	return dir
}

// #endregion fixtures

// #region load-tests
func TestLoadDocuments_MissingDir(t *testing.T) {
	docs, err := LoadDocuments(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadDocuments_SkipsSubdirsAndSorts(t *testing.T) {
	dir := writeCorpus(t, []Document{corpus[1], corpus[0]})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	docs, err := LoadDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "01_quadratic.txt", docs[0].Name)
	assert.Equal(t, corpus[1].Text, docs[1].Text)
}

// #endregion load-tests

// #region retrieve-tests
func TestRetrieve_EmptyCorpus(t *testing.T) {
	r, err := NewRetriever(nil, DefaultConfig(), nil)
	require.NoError(t, err)

	for _, q := range []string{"", "quadratic", "anything at all"} {
		texts, err := r.Query(context.Background(), q, 3)
		require.NoError(t, err)
		assert.Empty(t, texts)
	}
}

func TestRetrieve_RanksBySimilarity(t *testing.T) {
	r, err := NewRetriever(corpus, DefaultConfig(), nil)
	require.NoError(t, err)

	res, err := r.Retrieve(context.Background(), "solve a quadratic equation", 1)
	require.NoError(t, err)
	require.Len(t, res.Retrieved, 1)
	assert.Equal(t, "01_quadratic.txt", res.Retrieved[0].ID)
	assert.Greater(t, res.Retrieved[0].Score, 0.0)
}

func TestRetrieve_KLargerThanCorpus(t *testing.T) {
	r, err := NewRetriever(corpus, DefaultConfig(), nil)
	require.NoError(t, err)

	texts, err := r.Query(context.Background(), "derivative power rule", 10)
	require.NoError(t, err)
	require.Len(t, texts, len(corpus))
	assert.Equal(t, corpus[1].Text, texts[0])
}

func TestRetrieve_OutOfVocabularyKeepsCorpusOrder(t *testing.T) {
	r, err := NewRetriever(corpus, DefaultConfig(), nil)
	require.NoError(t, err)

	res, err := r.Retrieve(context.Background(), "zebra", 3)
	require.NoError(t, err)
	require.Len(t, res.Retrieved, 3)
	for i, e := range res.Retrieved {
		assert.Equal(t, corpus[i].Name, e.ID)
		assert.Zero(t, e.Score)
	}
}

func TestRetrieve_DefaultK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopK = 2
	r, err := NewRetriever(corpus, cfg, nil)
	require.NoError(t, err)

	texts, err := r.Query(context.Background(), "probability", 0)
	require.NoError(t, err)
	assert.Len(t, texts, 2)
}

func TestRetrieve_CacheHit(t *testing.T) {
	r, err := NewRetriever(corpus, DefaultConfig(), nil)
	require.NoError(t, err)

	first, err := r.Retrieve(context.Background(), "power rule", 3)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := r.Retrieve(context.Background(), "power rule", 3)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Texts(), second.Texts())
}

func TestRetrieve_CanceledContext(t *testing.T) {
	r, err := NewRetriever(corpus, DefaultConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Retrieve(ctx, "power rule", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

// #endregion retrieve-tests
