package retrieval

// #region config
// RetrievalConfig holds limits for context retrieval.
type RetrievalConfig struct {
	TopK      int // default number of documents per query
	CacheSize int // query-vector LRU entries; 0 disables the cache
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:      3,
		CacheSize: 128,
	}
}

// #endregion config

// #region document
// Document is one reference text from the corpus directory.
type Document struct {
	Name string
	Text string
}

// EvidenceRecord is a single retrieved document with its similarity.
type EvidenceRecord struct {
	ID    string
	Text  string
	Score float64
}

// #endregion document

// #region result
// Result captures one retrieval.
type Result struct {
	Retrieved []EvidenceRecord
	CacheHit  bool
	Reason    string // human-readable explanation
}

// Texts returns the retrieved document texts in rank order.
func (r Result) Texts() []string {
	out := make([]string, len(r.Retrieved))
	for i, e := range r.Retrieved {
		out[i] = e.Text
	}
	return out
}

// #endregion result
