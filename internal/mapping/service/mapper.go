// Package service resolves document column headers to canonical target
// fields: exact match first, fuzzy match as fallback, with required-field
// auditing and per-field value validation on top.
package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"colmap-service/internal/fuzzy"
	"colmap-service/internal/mapping/model"
)

// DefaultMinConfidence is the acceptance threshold applied when the
// caller does not supply one.
const DefaultMinConfidence = 0.7

// ColumnMapper resolves header strings against one loaded configuration.
// It owns a private fuzzy matcher (and through it mutable cache/index
// state), so use one mapper per document-processing task and do not
// share instances across goroutines.
type ColumnMapper struct {
	lookup        *Lookup
	matcher       *fuzzy.Matcher
	minConfidence float64
	log           zerolog.Logger
}

// New builds a mapper from a configuration with the default confidence
// threshold. Configuration problems (a malformed validation regex)
// surface here, once.
func New(cfg *model.Configuration, logger zerolog.Logger) (*ColumnMapper, error) {
	return NewWithConfidence(cfg, DefaultMinConfidence, logger)
}

// NewWithConfidence builds a mapper with a caller-chosen acceptance
// threshold.
func NewWithConfidence(cfg *model.Configuration, minConfidence float64, logger zerolog.Logger) (*ColumnMapper, error) {
	lookup, err := NewLookup(cfg)
	if err != nil {
		return nil, err
	}
	if minConfidence <= 0 || minConfidence > 1 {
		minConfidence = DefaultMinConfidence
	}

	m := &ColumnMapper{
		lookup:        lookup,
		matcher:       fuzzy.ForFedRAMPColumns(),
		minConfidence: minConfidence,
		log:           logger,
	}
	m.matcher.BuildTargetIndex(lookup.Targets(""))
	return m, nil
}

// MinConfidence returns the active acceptance threshold.
func (m *ColumnMapper) MinConfidence() float64 { return m.minConfidence }

// MapColumns resolves every header against the full candidate pool.
// Headers that resolve neither exactly nor fuzzily are simply absent
// from the result; mapping is best-effort with visible gaps, never an
// error.
func (m *ColumnMapper) MapColumns(headers []string) []model.MappingResult {
	return m.mapColumns(headers, "")
}

// MapColumnsForType resolves headers with the candidate pool scoped to
// one source type. This removes the cross-type alias ambiguity for
// callers that know which document kind they are parsing.
func (m *ColumnMapper) MapColumnsForType(headers []string, scope model.SourceType) []model.MappingResult {
	return m.mapColumns(headers, scope)
}

func (m *ColumnMapper) mapColumns(headers []string, scope model.SourceType) []model.MappingResult {
	results := make([]model.MappingResult, 0, len(headers))
	for _, header := range headers {
		if r, ok := m.mapOne(header, scope); ok {
			results = append(results, r)
		} else {
			m.log.Debug().Str("column", header).Msg("no mapping found for column")
		}
	}
	return results
}

func (m *ColumnMapper) mapOne(header string, scope model.SourceType) (model.MappingResult, bool) {
	// exact hit bypasses fuzzy matching entirely
	if entry, ok := m.lookup.FindExactMatch(header); ok && (scope == "" || entry.SourceType == scope) {
		return model.MappingResult{
			SourceColumn: header,
			TargetField:  entry.TargetField,
			Confidence:   1.0,
			SourceType:   entry.SourceType,
			Required:     entry.Required,
			Validation:   entry.Validation,
			ExactMatch:   true,
		}, true
	}

	matches := m.matcher.FindMatches(header, m.lookup.Targets(scope))
	if len(matches) == 0 || matches[0].Confidence < m.minConfidence {
		return model.MappingResult{}, false
	}

	best := matches[0]
	candidate, ok := m.lookup.ResolveCandidate(best.Target, scope)
	if !ok {
		return model.MappingResult{}, false
	}

	entry := model.MappingEntry{}
	if e, found := m.lookup.FindExactMatch(candidate.OriginalName); found && e.SourceType == candidate.SourceType {
		entry = e
	}

	return model.MappingResult{
		SourceColumn: header,
		TargetField:  candidate.TargetField,
		Confidence:   best.Confidence,
		SourceType:   candidate.SourceType,
		Required:     candidate.Required,
		Validation:   entry.Validation,
		ExactMatch:   best.ExactMatch,
	}, true
}

// ValidateRequiredMappings returns one warning per required target field
// that no header mapped to. It never fails; callers decide how to react.
func (m *ColumnMapper) ValidateRequiredMappings(results []model.MappingResult) []string {
	mapped := make(map[string]struct{}, len(results))
	for _, r := range results {
		mapped[r.TargetField] = struct{}{}
	}

	var missing []string
	for _, field := range m.lookup.RequiredFields() {
		if _, ok := mapped[field]; !ok {
			missing = append(missing, fmt.Sprintf("required field %q was not mapped to any column", field))
		}
	}
	return missing
}

// Statistics returns a diagnostics snapshot of the lookup structures and
// the fuzzy matcher cache.
func (m *ColumnMapper) Statistics() model.Statistics {
	dist := make(map[model.SourceType]int)
	for _, c := range m.lookup.candidates {
		dist[c.SourceType]++
	}
	size, capacity := m.matcher.CacheStats()
	return model.Statistics{
		ExactMatches:           len(m.lookup.exactMatches),
		FuzzyCandidates:        len(m.lookup.candidates),
		ValidationRules:        len(m.lookup.validationRules),
		RequiredFields:         len(m.lookup.requiredFields),
		SourceTypeDistribution: dist,
		FuzzyCacheSize:         size,
		FuzzyCacheCapacity:     capacity,
	}
}

// ClearCaches drops the fuzzy matcher's cached pair scores.
func (m *ColumnMapper) ClearCaches() {
	m.matcher.ClearCache()
}
