// Package embedding turns text into sparse term-weight vectors. The
// vocabulary and inverse document frequencies are fit once over a corpus and
// frozen; later texts reuse them and unseen terms contribute nothing.
package embedding

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// #region tokenize
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Tokenize lowercases text and returns its words of two or more word
// characters, stop words removed, in order of appearance.
func Tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := words[:0]
	for _, w := range words {
		if stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// #endregion tokenize

// #region vectorizer
// Vectorizer is a fitted TF-IDF model. A Vectorizer is immutable after Fit
// and safe for concurrent use.
type Vectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// Fit builds the vocabulary from corpus. Terms are indexed alphabetically
// and weighted with the smoothed idf ln((1+n)/(1+df)) + 1.
func Fit(corpus []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, t := range Tokenize(doc) {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Dim is the vocabulary size and the length of every embedding.
func (v *Vectorizer) Dim() int { return len(v.terms) }

// Terms returns the vocabulary in index order.
func (v *Vectorizer) Terms() []string { return append([]string(nil), v.terms...) }

// Embed returns the l2-normalized TF-IDF vector of text. A text with no
// vocabulary terms embeds to the zero vector.
func (v *Vectorizer) Embed(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, t := range Tokenize(text) {
		if i, ok := v.vocab[t]; ok {
			vec[i] += v.idf[i]
		}
	}
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// EmbedAll embeds each text in order.
func (v *Vectorizer) EmbedAll(texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = v.Embed(t)
	}
	return out
}

// #endregion vectorizer
