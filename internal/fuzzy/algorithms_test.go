package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinSimilarity(t *testing.T) {
	alg := Levenshtein{}

	assert.InDelta(t, 0.8, alg.Similarity("test", "tests"), 1e-9)
	assert.Equal(t, 1.0, alg.Similarity("identical", "identical"))
	assert.Equal(t, 1.0, alg.Similarity("", ""))
	assert.Equal(t, 0.0, alg.Similarity("", "nonempty"))
	assert.Equal(t, 0.0, alg.Similarity("nonempty", ""))

	// completely different strings of equal length
	assert.InDelta(t, 0.0, alg.Similarity("abc", "xyz"), 1e-9)
}

func TestJaroWinklerSimilarity(t *testing.T) {
	alg := JaroWinkler{}

	assert.Equal(t, 1.0, alg.Similarity("asset", "asset"))
	assert.Equal(t, 1.0, alg.Similarity("", ""))
	assert.Equal(t, 0.0, alg.Similarity("", "asset"))

	// classic reference pair
	assert.InDelta(t, 0.9611, alg.Similarity("martha", "marhta"), 0.001)

	// prefix bonus: shared prefix scores higher than a shared suffix
	prefix := alg.Similarity("asset identifier", "asset id")
	suffix := alg.Similarity("identifier asset", "id asset")
	assert.Greater(t, prefix, suffix)
}

func TestNgramSimilarity(t *testing.T) {
	alg := NewNgram(2)

	assert.Equal(t, 1.0, alg.Similarity("test", "test"))
	assert.Equal(t, 0.0, alg.Similarity("", "test"))
	assert.Equal(t, 1.0, alg.Similarity("", ""))

	// test={te,es,st}, tests={te,es,st,ts}: 3 shared of 4 total
	assert.InDelta(t, 0.75, alg.Similarity("test", "tests"), 1e-9)

	// strings shorter than n collapse to a single gram
	assert.Equal(t, 1.0, alg.Similarity("a", "a"))
	assert.Equal(t, 0.0, alg.Similarity("a", "b"))
}

func TestNgramDefaultsToBigrams(t *testing.T) {
	assert.Equal(t, 2, NewNgram(0).N)
	assert.Equal(t, 3, NewNgram(3).N)
}

func TestSoundexCode(t *testing.T) {
	alg := Soundex{}

	assert.Equal(t, "S530", alg.Code("Smith"))
	assert.Equal(t, "S530", alg.Code("Smyth"))
	assert.Equal(t, "R163", alg.Code("Robert"))
	assert.Equal(t, "R163", alg.Code("Rupert"))
	assert.Equal(t, "0000", alg.Code(""))
}

func TestSoundexSimilarity(t *testing.T) {
	alg := Soundex{}

	assert.Greater(t, alg.Similarity("Smith", "Smyth"), 0.8)
	assert.Equal(t, 1.0, alg.Similarity("same", "same"))
	assert.Equal(t, 0.0, alg.Similarity("", "word"))
	assert.Equal(t, 1.0, alg.Similarity("", ""))
	assert.False(t, alg.NeedsPreprocessing())
}

func TestSimilarityBounds(t *testing.T) {
	algorithms := []Algorithm{Levenshtein{}, JaroWinkler{}, NewNgram(2), Soundex{}}
	pairs := [][2]string{
		{"", ""},
		{"", "x"},
		{"x", ""},
		{"asset id", "asset identifier"},
		{"completely", "different"},
		{"Asset_ID", "Asset ID"},
		{"a", "aaaaaaaaaaaaaaaaaaaaaaaa"},
	}

	for _, alg := range algorithms {
		for _, p := range pairs {
			s := alg.Similarity(p[0], p[1])
			assert.GreaterOrEqual(t, s, 0.0, "%s(%q,%q)", alg.Name(), p[0], p[1])
			assert.LessOrEqual(t, s, 1.0, "%s(%q,%q)", alg.Name(), p[0], p[1])
		}
	}
}
