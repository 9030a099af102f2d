package fuzzy

import "strings"

// Algorithm computes a similarity score in [0,1] between two strings.
// 0.0 means no similarity, 1.0 means identical. Implementations must
// handle empty strings without panicking.
type Algorithm interface {
	Name() string
	Similarity(s1, s2 string) float64
	// NeedsPreprocessing reports whether the algorithm benefits from the
	// shared text-normalization pipeline, or performs its own.
	NeedsPreprocessing() bool
}

// Levenshtein scores by normalized edit distance:
// 1 - distance/max(len(s1), len(s2)), over bytes.
type Levenshtein struct{}

func (Levenshtein) Name() string             { return "levenshtein" }
func (Levenshtein) NeedsPreprocessing() bool { return true }

func (Levenshtein) Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}
	d := levenshteinDistance(s1, s2)
	m := max(len(s1), len(s2))
	return 1.0 - float64(d)/float64(m)
}

// two-row DP over bytes
func levenshteinDistance(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	cur := make([]int, len(s2)+1)
	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		cur[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(s2)]
}

// JaroWinkler is standard Jaro similarity (matching windows plus
// transpositions) boosted by a common-prefix bonus of up to 4 characters.
type JaroWinkler struct{}

func (JaroWinkler) Name() string             { return "jaro_winkler" }
func (JaroWinkler) NeedsPreprocessing() bool { return true }

func (JaroWinkler) Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	j := jaro(r1, r2)
	if j < 0.7 {
		return j
	}

	prefix := 0
	limit := min(4, len(r1), len(r2))
	for i := 0; i < limit; i++ {
		if r1[i] != r2[i] {
			break
		}
		prefix++
	}
	return j + 0.1*float64(prefix)*(1.0-j)
}

func jaro(r1, r2 []rune) float64 {
	window := max(len(r1), len(r2))/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len(r1))
	matched2 := make([]bool, len(r2))
	matches := 0
	for i := range r1 {
		start := max(0, i-window)
		end := min(i+window+1, len(r2))
		for k := start; k < end; k++ {
			if matched2[k] || r1[i] != r2[k] {
				continue
			}
			matched1[i] = true
			matched2[k] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := range r1 {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len(r1)) + m/float64(len(r2)) + (m-float64(transpositions)/2.0)/m) / 3.0
}

// Ngram scores by the Jaccard index of the two character n-gram sets.
// Duplicate grams collapse: this is set Jaccard, not a frequency-weighted
// comparison, so repetition count is not penalized.
type Ngram struct {
	N int
}

// NewNgram returns an n-gram scorer; n defaults to 2 (bigrams) when the
// given value is not positive.
func NewNgram(n int) Ngram {
	if n <= 0 {
		n = 2
	}
	return Ngram{N: n}
}

func (Ngram) Name() string             { return "ngram" }
func (Ngram) NeedsPreprocessing() bool { return true }

func (g Ngram) Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	g1 := g.grams(s1)
	g2 := g.grams(s2)

	intersection := 0
	for gram := range g1 {
		if _, ok := g2[gram]; ok {
			intersection++
		}
	}
	union := len(g1) + len(g2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func (g Ngram) grams(s string) map[string]struct{} {
	n := g.N
	if n <= 0 {
		n = 2
	}
	set := make(map[string]struct{})
	r := []rune(s)
	if len(r) < n {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(r); i++ {
		set[string(r[i:i+n])] = struct{}{}
	}
	return set
}

// Soundex compares the classic 4-character phonetic codes of both
// strings. Equal codes score 1.0; otherwise the codes themselves are
// compared by edit distance. It performs its own case and phonetic
// normalization, so it is excluded from the shared pipeline.
type Soundex struct{}

func (Soundex) Name() string             { return "soundex" }
func (Soundex) NeedsPreprocessing() bool { return false }

func (sx Soundex) Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}
	c1 := sx.Code(s1)
	c2 := sx.Code(s2)
	if c1 == c2 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(c1, c2))/4.0
}

// Code returns the 4-character Soundex code: first letter verbatim,
// subsequent letters mapped to digit classes with vowels and H/W/Y
// skipped, consecutive duplicate codes collapsed, padded with zeros.
func (Soundex) Code(s string) string {
	s = strings.ToUpper(s)
	if s == "" {
		return "0000"
	}

	runes := []rune(s)
	out := make([]rune, 0, 4)
	out = append(out, runes[0])
	prev := soundexClass(runes[0])

	for _, r := range runes[1:] {
		code := soundexClass(r)
		if code != '0' && code != prev {
			out = append(out, code)
			if len(out) == 4 {
				break
			}
		}
		if code != '0' {
			prev = code
		}
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out)
}

func soundexClass(r rune) rune {
	switch r {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		return '0'
	}
}
