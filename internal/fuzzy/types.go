package fuzzy

import (
	"hash/fnv"
	"math"
	"sort"
)

// Result describes how well a single target matched a source string.
// Results are immutable once returned; the matcher may keep a copy in
// its cache.
type Result struct {
	Target               string             `json:"target"`
	Confidence           float64            `json:"confidence"`
	AlgorithmScores      map[string]float64 `json:"algorithm_scores,omitempty"`
	PreprocessingApplied []string           `json:"preprocessing_applied,omitempty"`
	ExactMatch           bool               `json:"exact_match"`
	Explanation          *Explanation       `json:"explanation,omitempty"`
}

// Explanation is the full breakdown of a single comparison. It is only
// populated when explicitly requested, never on the hot path.
type Explanation struct {
	OriginalSource  string                           `json:"original_source"`
	OriginalTarget  string                           `json:"original_target"`
	ProcessedSource string                           `json:"processed_source"`
	ProcessedTarget string                           `json:"processed_target"`
	Contributions   map[string]AlgorithmContribution `json:"algorithm_contributions"`
	Calculation     WeightedCalculation              `json:"weighted_calculation"`
	Metrics         PerformanceMetrics               `json:"performance_metrics"`
}

// AlgorithmContribution is one algorithm's share of the final score.
type AlgorithmContribution struct {
	RawScore          float64 `json:"raw_score"`
	Weight            float64 `json:"weight"`
	WeightedScore     float64 `json:"weighted_contribution"`
	UsedPreprocessing bool    `json:"used_preprocessing"`
}

// WeightedCalculation shows how the per-algorithm scores were combined.
type WeightedCalculation struct {
	TotalWeightedScore float64 `json:"total_weighted_score"`
	TotalWeight        float64 `json:"total_weight"`
	NormalizedScore    float64 `json:"normalized_score"`
}

// PerformanceMetrics records what the matcher actually did for a pair.
type PerformanceMetrics struct {
	CacheHit           bool `json:"cache_hit"`
	AlgorithmsExecuted int  `json:"algorithms_executed"`
	EarlyTermination   bool `json:"early_termination"`
}

// Config controls matcher behavior. It is immutable for the duration of
// a matching session; pass a new one to UpdateConfig to change it.
type Config struct {
	MinConfidence        float64
	MaxResults           int
	AlgorithmWeights     map[string]float64
	PreprocessingEnabled bool
	CacheSize            int
}

// DefaultConfig returns the general-purpose matcher configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.6,
		MaxResults:    10,
		AlgorithmWeights: map[string]float64{
			"levenshtein":  0.3,
			"jaro_winkler": 0.3,
			"ngram":        0.25,
			"soundex":      0.15,
		},
		PreprocessingEnabled: true,
		CacheSize:            1000,
	}
}

// hash folds every config field into a single value. Cache entries carry
// the hash they were computed under, so a config change can never be
// answered from stale entries that share only (source, target).
func (c Config) hash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)

	putUint64 := func(v uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		_, _ = h.Write(buf)
	}

	putUint64(math.Float64bits(c.MinConfidence))
	putUint64(uint64(c.MaxResults))
	putUint64(uint64(c.CacheSize))
	if c.PreprocessingEnabled {
		putUint64(1)
	} else {
		putUint64(0)
	}

	names := make([]string, 0, len(c.AlgorithmWeights))
	for name := range c.AlgorithmWeights {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = h.Write([]byte(name))
		putUint64(math.Float64bits(c.AlgorithmWeights[name]))
	}
	return h.Sum64()
}

// cacheKey identifies one scored pair under one configuration.
type cacheKey struct {
	source     string
	target     string
	configHash uint64
}
