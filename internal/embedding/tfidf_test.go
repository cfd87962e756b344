package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The Derivative of x^2 is 2x, and THE chain rule!")
	assert.Equal(t, []string{"derivative", "2x", "chain", "rule"}, got)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("the of and"))
}

func TestFitVocabularyIsSorted(t *testing.T) {
	v := Fit([]string{"quadratic formula roots", "derivative power rule"})
	assert.Equal(t, []string{"derivative", "formula", "power", "quadratic", "roots", "rule"}, v.Terms())
	assert.Equal(t, 6, v.Dim())
}

func TestEmbedIsUnitLength(t *testing.T) {
	v := Fit([]string{"quadratic formula roots", "derivative power rule", "power series"})
	vec := v.Embed("power rule for derivative")
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-12)
}

func TestEmbedWeightsRareTermsHigher(t *testing.T) {
	v := Fit([]string{"power rule", "power series", "power set"})
	vec := v.Embed("power rule")
	terms := v.Terms()
	idx := func(term string) int {
		for i, t := range terms {
			if t == term {
				return i
			}
		}
		return -1
	}
	require.GreaterOrEqual(t, idx("rule"), 0)
	assert.Greater(t, vec[idx("rule")], vec[idx("power")])
}

func TestEmbedOutOfVocabulary(t *testing.T) {
	v := Fit([]string{"quadratic formula"})
	vec := v.Embed("integration by parts")
	assert.Len(t, vec, v.Dim())
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func TestFitAllStopWords(t *testing.T) {
	v := Fit([]string{"the and of", "it is"})
	assert.Equal(t, 0, v.Dim())
	assert.Empty(t, v.Embed("the quadratic"))
}
