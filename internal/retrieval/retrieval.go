// Package retrieval builds the reference-document index at startup and
// answers context queries against it.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/math-mentor/internal/embedding"
	"github.com/danielpatrickdp/math-mentor/internal/metrics"
	"github.com/danielpatrickdp/math-mentor/internal/vectorstore"
)

// #region load
// LoadDocuments reads every regular file in dir as UTF-8 text, in name
// order. A missing directory is an empty corpus.
func LoadDocuments(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus dir %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []Document
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", path, err)
		}
		docs = append(docs, Document{Name: e.Name(), Text: string(b)})
	}
	return docs, nil
}

// #endregion load

// #region retriever
// Retriever answers queries against an index built once from a corpus. It
// is safe for concurrent use.
type Retriever struct {
	vectorizer *embedding.Vectorizer
	store      *vectorstore.Store
	docs       []Document
	cache      *lru.Cache[string, []float64]
	config     RetrievalConfig
	logger     *zap.Logger
}

// NewRetriever fits the embedding over docs and fills the vector store.
// With no documents every query returns nothing.
func NewRetriever(docs []Document, config RetrievalConfig, logger *zap.Logger) (*Retriever, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Retriever{docs: docs, config: config, logger: logger}
	if config.CacheSize > 0 {
		c, err := lru.New[string, []float64](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("query cache: %w", err)
		}
		r.cache = c
	}
	if len(docs) == 0 {
		logger.Info("retrieval index empty")
		return r, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	r.vectorizer = embedding.Fit(texts)
	r.store = vectorstore.New(r.vectorizer.Dim())
	for i, vec := range r.vectorizer.EmbedAll(texts) {
		if err := r.store.Add(vec, texts[i]); err != nil {
			return nil, fmt.Errorf("index document %s: %w", docs[i].Name, err)
		}
	}
	logger.Info("retrieval index built",
		zap.Int("documents", len(docs)),
		zap.Int("dimension", r.vectorizer.Dim()))
	return r, nil
}

// Len returns the number of indexed documents.
func (r *Retriever) Len() int { return len(r.docs) }

// #endregion retriever

// #region retrieve
// Retrieve returns up to k documents ranked by cosine similarity to query.
// k <= 0 uses the configured TopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if k <= 0 {
		k = r.config.TopK
	}
	if r.store == nil {
		metrics.RetrievalsTotal.WithLabelValues("none").Inc()
		return Result{Reason: "empty corpus"}, nil
	}

	vec, hit := r.embed(query)
	hits, err := r.store.Search(vec, k)
	if err != nil {
		return Result{}, fmt.Errorf("retrieval search: %w", err)
	}
	result := Result{CacheHit: hit, Retrieved: make([]EvidenceRecord, len(hits))}
	for i, h := range hits {
		result.Retrieved[i] = EvidenceRecord{ID: r.docs[h.Index].Name, Text: h.Doc, Score: h.Score}
	}
	result.Reason = fmt.Sprintf("retrieved %d of %d documents", len(hits), r.store.Len())
	r.logger.Debug("retrieved context",
		zap.Int("k", k),
		zap.Int("returned", len(hits)),
		zap.Bool("cache_hit", hit))
	return result, nil
}

// Query returns the texts of the top k documents.
func (r *Retriever) Query(ctx context.Context, query string, k int) ([]string, error) {
	res, err := r.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return res.Texts(), nil
}

func (r *Retriever) embed(query string) ([]float64, bool) {
	if r.cache == nil {
		metrics.RetrievalsTotal.WithLabelValues("none").Inc()
		return r.vectorizer.Embed(query), false
	}
	if vec, ok := r.cache.Get(query); ok {
		metrics.RetrievalsTotal.WithLabelValues("hit").Inc()
		return vec, true
	}
	metrics.RetrievalsTotal.WithLabelValues("miss").Inc()
	vec := r.vectorizer.Embed(query)
	r.cache.Add(query, vec)
	return vec, false
}

// #endregion retrieve
