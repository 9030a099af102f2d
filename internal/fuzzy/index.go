package fuzzy

import (
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// indexMinTargets is the list size below which building an index is not
// worth the memory; find-path pruning kicks in above batchThreshold.
const (
	indexMinTargets = 50
	batchThreshold  = 100
	scoreChunkSize  = 50
)

// targetIndex accelerates candidate selection for large target lists.
// It is a read-side structure only: it is rebuilt whenever the matcher
// sees a different target list, never updated incrementally.
type targetIndex struct {
	lengthBuckets  map[int][]string
	firstCharIndex map[rune][]string
	trigramIndex   map[string][]string
	fingerprint    uint64
}

func targetsFingerprint(targets []string) uint64 {
	h := fnv.New64a()
	for _, t := range targets {
		_, _ = h.Write([]byte(t))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func buildIndex(targets []string) *targetIndex {
	idx := &targetIndex{
		lengthBuckets:  make(map[int][]string),
		firstCharIndex: make(map[rune][]string),
		trigramIndex:   make(map[string][]string),
		fingerprint:    targetsFingerprint(targets),
	}
	for _, t := range targets {
		n := utf8.RuneCountInString(t)
		idx.lengthBuckets[n] = append(idx.lengthBuckets[n], t)

		if first, _ := utf8.DecodeRuneInString(t); first != utf8.RuneError {
			c := unicode.ToLower(first)
			idx.firstCharIndex[c] = append(idx.firstCharIndex[c], t)
		}

		for g := range trigrams(t) {
			idx.trigramIndex[g] = append(idx.trigramIndex[g], t)
		}
	}
	return idx
}

func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return set
	}
	if len(r) < 3 {
		set[string(r)] = struct{}{}
		return set
	}
	for i := 0; i+3 <= len(r); i++ {
		set[string(r[i:i+3])] = struct{}{}
	}
	return set
}

// candidates returns the union of targets that are plausibly close to
// source: similar length, same first character, or any shared trigram.
// The result is sorted for deterministic scoring order.
func (idx *targetIndex) candidates(source string) []string {
	seen := make(map[string]struct{})

	n := utf8.RuneCountInString(source)
	for l := n - 3; l <= n+3; l++ {
		for _, t := range idx.lengthBuckets[l] {
			seen[t] = struct{}{}
		}
	}

	if first, _ := utf8.DecodeRuneInString(source); first != utf8.RuneError {
		for _, t := range idx.firstCharIndex[unicode.ToLower(first)] {
			seen[t] = struct{}{}
		}
	}

	for g := range trigrams(source) {
		for _, t := range idx.trigramIndex[g] {
			seen[t] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// shouldSkipTarget is the cheap reject filter applied before any scoring:
// wildly different lengths, or completely disjoint leading characters,
// cannot clear a useful confidence threshold.
func shouldSkipTarget(source, target string) bool {
	l1 := utf8.RuneCountInString(source)
	l2 := utf8.RuneCountInString(target)
	if l1 == 0 || l2 == 0 {
		return true
	}
	diff := l1 - l2
	if diff < 0 {
		diff = -diff
	}
	if float64(diff)/float64(max(l1, l2)) > 0.7 {
		return true
	}

	h1 := headRunes(source, 3)
	h2 := headRunes(target, 3)
	for r := range h1 {
		if _, ok := h2[r]; ok {
			return false
		}
	}
	return true
}

func headRunes(s string, n int) map[rune]struct{} {
	set := make(map[rune]struct{}, n)
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
		n--
		if n == 0 {
			break
		}
	}
	return set
}
