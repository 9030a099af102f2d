package fuzzy

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// Matcher combines preprocessing with weighted multi-algorithm scoring.
// It owns two pieces of mutable state, the LRU result cache and the
// optional target index, so a single instance must not be shared between
// goroutines without external synchronization. The intended usage is one
// matcher per document-processing task.
type Matcher struct {
	algorithms  []Algorithm
	preproc     *Preprocessor
	config      Config
	configHash  uint64
	totalWeight float64
	cache       *lru.Cache[cacheKey, Result]
	cacheCap    int
	index       *targetIndex
}

// NewMatcher returns a matcher with the default configuration.
func NewMatcher() *Matcher {
	return NewMatcherWithConfig(DefaultConfig())
}

// NewMatcherWithConfig returns a matcher for the given configuration.
func NewMatcherWithConfig(cfg Config) *Matcher {
	m := &Matcher{preproc: NewPreprocessor()}
	m.applyConfig(cfg)
	return m
}

// ForFedRAMPColumns returns a matcher tuned for column-header matching
// in FedRAMP templates: a permissive threshold with Jaro-Winkler carrying
// most of the weight, since header variants tend to share long prefixes.
func ForFedRAMPColumns() *Matcher {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.6
	cfg.MaxResults = 5
	cfg.AlgorithmWeights = map[string]float64{
		"levenshtein":  0.25,
		"jaro_winkler": 0.45,
		"ngram":        0.25,
		"soundex":      0.05,
	}
	return NewMatcherWithConfig(cfg)
}

func (m *Matcher) applyConfig(cfg Config) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}

	m.config = cfg
	m.configHash = cfg.hash()

	// zero-weight entries never execute
	m.algorithms = m.algorithms[:0]
	m.totalWeight = 0
	for name, weight := range cfg.AlgorithmWeights {
		if weight <= 0 {
			continue
		}
		if alg := algorithmByName(name); alg != nil {
			m.algorithms = append(m.algorithms, alg)
			m.totalWeight += weight
		}
	}
	// heaviest first, so early termination can cut as soon as possible
	sort.Slice(m.algorithms, func(i, j int) bool {
		wi := cfg.AlgorithmWeights[m.algorithms[i].Name()]
		wj := cfg.AlgorithmWeights[m.algorithms[j].Name()]
		if wi != wj {
			return wi > wj
		}
		return m.algorithms[i].Name() < m.algorithms[j].Name()
	})

	if m.cache == nil {
		m.cache, _ = lru.New[cacheKey, Result](cfg.CacheSize)
		m.cacheCap = cfg.CacheSize
	} else if cfg.CacheSize != m.cacheCap {
		m.cache.Resize(cfg.CacheSize)
		m.cacheCap = cfg.CacheSize
	}
}

func algorithmByName(name string) Algorithm {
	switch name {
	case "levenshtein":
		return Levenshtein{}
	case "jaro_winkler":
		return JaroWinkler{}
	case "ngram":
		return NewNgram(2)
	case "soundex":
		return Soundex{}
	default:
		return nil
	}
}

// Config returns the active configuration.
func (m *Matcher) Config() Config { return m.config }

// UpdateConfig swaps the configuration. The cache is cleared when the
// new configuration hashes differently, and resized when the capacity
// changed.
func (m *Matcher) UpdateConfig(cfg Config) {
	if cfg.hash() != m.configHash {
		m.ClearCache()
	}
	m.applyConfig(cfg)
}

// ClearCache drops all cached pair scores.
func (m *Matcher) ClearCache() {
	if m.cache != nil {
		m.cache.Purge()
	}
}

// CacheStats returns the current cache size and capacity.
func (m *Matcher) CacheStats() (size, capacity int) {
	if m.cache == nil {
		return 0, 0
	}
	return m.cache.Len(), m.cacheCap
}

// BuildTargetIndex constructs the candidate-pruning index for the given
// list. Lists below the index threshold clear any existing index instead;
// scanning them beats the bookkeeping.
func (m *Matcher) BuildTargetIndex(targets []string) {
	if len(targets) < indexMinTargets {
		m.index = nil
		return
	}
	m.index = buildIndex(targets)
	log.Debug().Int("targets", len(targets)).Msg("fuzzy target index built")
}

// FindMatches scores source against every target and returns matches at
// or above MinConfidence, best first, truncated to MaxResults. A raw
// byte-equal target short-circuits everything else.
func (m *Matcher) FindMatches(source string, targets []string) []Result {
	for _, t := range targets {
		if t == source {
			return []Result{{Target: t, Confidence: 1.0, ExactMatch: true}}
		}
	}
	if len(targets) > batchThreshold {
		return m.findMatchesBatch(source, targets)
	}
	return m.findMatchesStandard(source, targets)
}

func (m *Matcher) findMatchesStandard(source string, targets []string) []Result {
	processedSource, sourceSteps := m.preprocessSource(source)

	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		if r, ok := m.matchPair(source, target, processedSource, sourceSteps, false); ok &&
			r.Confidence >= m.config.MinConfidence {
			results = append(results, r)
		}
	}
	return m.finish(results)
}

// findMatchesBatch prunes the target list through the index, rejects
// hopeless candidates cheaply, and scores the survivors in chunks so a
// clear winner stops the scan early.
func (m *Matcher) findMatchesBatch(source string, targets []string) []Result {
	if m.index == nil || m.index.fingerprint != targetsFingerprint(targets) {
		m.BuildTargetIndex(targets)
	}
	candidates := m.index.candidates(source)

	processedSource, sourceSteps := m.preprocessSource(source)

	var results []Result
	highConfidence := 0
	done := false

	for start := 0; start < len(candidates) && !done; start += scoreChunkSize {
		end := min(start+scoreChunkSize, len(candidates))
		for _, target := range candidates[start:end] {
			if shouldSkipTarget(source, target) {
				continue
			}
			r, ok := m.matchPair(source, target, processedSource, sourceSteps, false)
			if !ok || r.Confidence < m.config.MinConfidence {
				continue
			}
			results = append(results, r)
			if r.Confidence >= 0.99 {
				done = true
				break
			}
			if r.Confidence > 0.9 {
				highConfidence++
				if highConfidence >= 2*m.config.MaxResults {
					done = true
					break
				}
			}
		}
	}

	log.Debug().
		Str("source", source).
		Int("targets", len(targets)).
		Int("candidates", len(candidates)).
		Int("matches", len(results)).
		Msg("fuzzy batch match")
	return m.finish(results)
}

// finish applies the deterministic result ordering: confidence
// descending, then target ascending so equal scores never flap.
func (m *Matcher) finish(results []Result) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Target < results[j].Target
	})
	if len(results) > m.config.MaxResults {
		results = results[:m.config.MaxResults]
	}
	return results
}

// MatchSingle scores one pair. The second return is false when early
// termination proved the pair cannot reach MinConfidence.
func (m *Matcher) MatchSingle(source, target string) (Result, bool) {
	return m.MatchSingleWithExplanation(source, target, false)
}

// MatchSingleWithExplanation scores one pair, optionally with the full
// per-algorithm breakdown attached.
func (m *Matcher) MatchSingleWithExplanation(source, target string, includeExplanation bool) (Result, bool) {
	processedSource, sourceSteps := m.preprocessSource(source)
	return m.matchPair(source, target, processedSource, sourceSteps, includeExplanation)
}

// ExplainMatch is MatchSingle with the explanation always attached.
func (m *Matcher) ExplainMatch(source, target string) (Result, bool) {
	return m.MatchSingleWithExplanation(source, target, true)
}

// ExplainMatches is FindMatches with explanations attached to every
// returned result. It always takes the standard path; explanation is a
// debugging surface, not a hot path.
func (m *Matcher) ExplainMatches(source string, targets []string) []Result {
	processedSource, sourceSteps := m.preprocessSource(source)

	var results []Result
	for _, target := range targets {
		if r, ok := m.matchPair(source, target, processedSource, sourceSteps, true); ok &&
			r.Confidence >= m.config.MinConfidence {
			results = append(results, r)
		}
	}
	return m.finish(results)
}

func (m *Matcher) preprocessSource(source string) (string, []string) {
	if !m.config.PreprocessingEnabled {
		return source, nil
	}
	return m.preproc.Preprocess(source)
}

// matchPair is the per-pair scoring core: cache probe, preprocessing,
// exact check, then weight-ordered algorithm evaluation with an upper
// bound cutoff once the pair can no longer reach MinConfidence.
func (m *Matcher) matchPair(source, target, processedSource string, sourceSteps []string, explain bool) (Result, bool) {
	key := cacheKey{source: source, target: target, configHash: m.configHash}
	if !explain {
		if cached, ok := m.cache.Get(key); ok {
			log.Trace().Str("source", source).Str("target", target).Msg("fuzzy cache hit")
			return cached, true
		}
	}

	processedTarget := target
	if m.config.PreprocessingEnabled {
		processedTarget, _ = m.preproc.Preprocess(target)
	}

	if processedSource == processedTarget {
		r := Result{
			Target:               target,
			Confidence:           1.0,
			PreprocessingApplied: sourceSteps,
			ExactMatch:           true,
		}
		m.cache.Add(key, r)
		return r, true
	}

	scores := make(map[string]float64, len(m.algorithms))
	var contributions map[string]AlgorithmContribution
	if explain {
		contributions = make(map[string]AlgorithmContribution, len(m.algorithms))
	}

	weighted := 0.0
	accWeight := 0.0
	executed := 0
	earlyTerminated := false

	for i, alg := range m.algorithms {
		s1, s2 := source, target
		usedPreprocessing := false
		if alg.NeedsPreprocessing() && m.config.PreprocessingEnabled {
			s1, s2 = processedSource, processedTarget
			usedPreprocessing = true
		}

		weight := m.config.AlgorithmWeights[alg.Name()]
		raw := alg.Similarity(s1, s2)
		weighted += raw * weight
		accWeight += weight
		executed++
		scores[alg.Name()] = raw

		if explain {
			contributions[alg.Name()] = AlgorithmContribution{
				RawScore:          raw,
				Weight:            weight,
				WeightedScore:     raw * weight,
				UsedPreprocessing: usedPreprocessing,
			}
		}

		// best score still reachable if every remaining algorithm hits 1.0
		if i < len(m.algorithms)-1 {
			bound := (weighted + (m.totalWeight - accWeight)) / m.totalWeight
			if bound < m.config.MinConfidence {
				earlyTerminated = true
				break
			}
		}
	}

	if earlyTerminated {
		return Result{}, false
	}

	confidence := 0.0
	if accWeight > 0 {
		confidence = weighted / accWeight
	}

	r := Result{
		Target:               target,
		Confidence:           confidence,
		AlgorithmScores:      scores,
		PreprocessingApplied: sourceSteps,
	}
	if explain {
		r.Explanation = &Explanation{
			OriginalSource:  source,
			OriginalTarget:  target,
			ProcessedSource: processedSource,
			ProcessedTarget: processedTarget,
			Contributions:   contributions,
			Calculation: WeightedCalculation{
				TotalWeightedScore: weighted,
				TotalWeight:        accWeight,
				NormalizedScore:    confidence,
			},
			Metrics: PerformanceMetrics{
				CacheHit:           false,
				AlgorithmsExecuted: executed,
				EarlyTermination:   earlyTerminated,
			},
		}
	}

	// cached copies never carry explanations
	cached := r
	cached.Explanation = nil
	m.cache.Add(key, cached)

	return r, true
}
