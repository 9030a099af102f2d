package fuzzy

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesCoverCloseTargets(t *testing.T) {
	targets := []string{
		"asset identifier",
		"asset type",
		"ip address",
		"mac address",
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	}
	idx := buildIndex(targets)

	got := idx.candidates("asset id")
	assert.Contains(t, got, "asset identifier")
	assert.Contains(t, got, "asset type")
	assert.NotContains(t, got, "zzzzzzzzzzzzzzzzzzzzzzzzzzzzz")
	assert.True(t, sort.StringsAreSorted(got))
}

func TestCandidatesLengthBuckets(t *testing.T) {
	idx := buildIndex([]string{"abcde", "abcdefgh", "vwxyz"})

	// "vwxyz" shares no first char or trigram with "qrsuv" but is
	// within the length window
	got := idx.candidates("qrsuv")
	assert.Contains(t, got, "vwxyz")
}

func TestIndexFingerprint(t *testing.T) {
	a := targetsFingerprint([]string{"ab", "c"})
	b := targetsFingerprint([]string{"a", "bc"})
	c := targetsFingerprint([]string{"ab", "c"})

	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)
}

func TestTrigrams(t *testing.T) {
	g := trigrams("Asset")
	assert.Len(t, g, 3)
	assert.Contains(t, g, "ass")
	assert.Contains(t, g, "sse")
	assert.Contains(t, g, "set")

	short := trigrams("ab")
	require.Len(t, short, 1)
	assert.Contains(t, short, "ab")

	assert.Empty(t, trigrams(""))
}

func TestShouldSkipTarget(t *testing.T) {
	assert.False(t, shouldSkipTarget("asset id", "asset identifier"))
	assert.False(t, shouldSkipTarget("Severity", "severity level"))

	// disjoint leading characters
	assert.True(t, shouldSkipTarget("abc", "xyz"))

	// extreme length mismatch
	assert.True(t, shouldSkipTarget("ab", "abcdefghijklmnopqrstuvwxyz"))

	// empty strings never score
	assert.True(t, shouldSkipTarget("", "target"))
	assert.True(t, shouldSkipTarget("source", ""))
}
