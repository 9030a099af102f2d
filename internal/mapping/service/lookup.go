package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"colmap-service/internal/mapping/model"
)

// ConfigError reports a broken validation rule found while building the
// lookup structures. It surfaces once, at build time; the mapper assumes
// a validated configuration afterwards and never re-checks per call.
type ConfigError struct {
	Field string
	Rule  string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("validation rule %q for field %q: %v", e.Rule, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Lookup holds the derived matching structures for one configuration:
// the exact-match table, the fuzzy candidate pool (global and per source
// type), compiled validation rules, and the required-field set. It is
// built once per parsing session and read-only afterwards.
type Lookup struct {
	exactMatches    map[string]model.MappingEntry
	candidates      []model.FuzzyCandidate
	targets         []string
	targetsByType   map[model.SourceType][]string
	validationRules map[string]model.ValidationRule
	requiredFields  map[string]struct{}
}

// NormalizeKey reduces a column name to its exact-match key: lowercase
// with every non-alphanumeric character stripped. The same function
// produces FuzzyCandidate.NormalizedName, so the exact and fuzzy pools
// always agree about their own entries.
func NormalizeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewLookup builds the lookup structures from a configuration. Document
// kinds are processed in a fixed order and column keys in sorted order,
// so alias collisions across kinds resolve the same way on every load
// (first registered wins).
func NewLookup(cfg *model.Configuration) (*Lookup, error) {
	l := &Lookup{
		exactMatches:    make(map[string]model.MappingEntry),
		targetsByType:   make(map[model.SourceType][]string),
		validationRules: make(map[string]model.ValidationRule),
		requiredFields:  make(map[string]struct{}),
	}

	for _, kind := range cfg.Kinds() {
		if kind.Mappings == nil {
			continue
		}
		keys := sortedKeys(kind.Mappings.Columns)
		for _, key := range keys {
			spec := kind.Mappings.Columns[key]
			if spec.Field == "" {
				continue
			}
			entry := model.MappingEntry{
				TargetField: spec.Field,
				SourceType:  kind.Type,
				Required:    spec.Required,
				Validation:  spec.Validation,
				DataType:    spec.DataType,
			}
			l.register(entry, spec.ColumnNames)

			if spec.Validation != "" {
				if err := l.compileRule(spec.Field, spec.Validation, cfg.ValidationRules); err != nil {
					return nil, err
				}
			}
		}
	}

	if cfg.SspSections != nil {
		for _, key := range sortedKeys(cfg.SspSections.Sections) {
			spec := cfg.SspSections.Sections[key]
			if spec.Field == "" {
				continue
			}
			entry := model.MappingEntry{
				TargetField: spec.Field,
				SourceType:  model.SourceSspSection,
				Required:    spec.Required,
			}
			l.register(entry, spec.Keywords)
		}
	}

	return l, nil
}

func (l *Lookup) register(entry model.MappingEntry, aliases []string) {
	if entry.Required {
		l.requiredFields[entry.TargetField] = struct{}{}
	}
	for _, alias := range aliases {
		normalized := NormalizeKey(alias)
		if normalized == "" {
			continue
		}
		if _, taken := l.exactMatches[normalized]; !taken {
			l.exactMatches[normalized] = entry
		}
		l.candidates = append(l.candidates, model.FuzzyCandidate{
			OriginalName:   alias,
			NormalizedName: normalized,
			TargetField:    entry.TargetField,
			SourceType:     entry.SourceType,
			Required:       entry.Required,
		})
		l.targets = append(l.targets, alias)
		l.targetsByType[entry.SourceType] = append(l.targetsByType[entry.SourceType], alias)
	}
}

// built-in fallbacks used when the configuration leaves a pattern empty
var defaultControlIDPattern = regexp.MustCompile(`^[A-Za-z]{2}-[0-9]+(\.[0-9]+)?(\s?\([a-z0-9]+\))?$`)

var defaultBooleanValues = []string{"yes", "no", "true", "false", "y", "n", "1", "0"}

func (l *Lookup) compileRule(field, name string, rules model.ValidationRuleSet) error {
	if _, exists := l.validationRules[field]; exists {
		return nil
	}

	compile := func(pattern string) (*regexp.Regexp, error) {
		if pattern == "" {
			return nil, nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigError{Field: field, Rule: name, Err: err}
		}
		return re, nil
	}

	var rule model.ValidationRule
	switch name {
	case "ip_address":
		re, err := compile(rules.IPAddressPattern)
		if err != nil {
			return err
		}
		rule = model.ValidationRule{Type: model.RuleIPAddress, Pattern: re}
	case "mac_address":
		re, err := compile(rules.MACAddressPattern)
		if err != nil {
			return err
		}
		rule = model.ValidationRule{Type: model.RuleMACAddress, Pattern: re}
	case "control_id":
		re, err := compile(rules.ControlIDPattern)
		if err != nil {
			return err
		}
		if re == nil {
			re = defaultControlIDPattern
		}
		rule = model.ValidationRule{Type: model.RuleControlID, Pattern: re}
	case "boolean":
		values := rules.BooleanValues
		if len(values) == 0 {
			values = defaultBooleanValues
		}
		rule = model.ValidationRule{Type: model.RuleBoolean, AllowedValues: values}
	case "date":
		rule = model.ValidationRule{Type: model.RuleDate}
	case "unique_identifier":
		rule = model.ValidationRule{Type: model.RuleUniqueIdentifier}
	case "severity_levels":
		rule = model.ValidationRule{Type: model.RuleAllowedValues, AllowedValues: rules.SeverityLevels}
	case "status_values":
		rule = model.ValidationRule{Type: model.RuleAllowedValues, AllowedValues: rules.StatusValues}
	case "criticality_levels":
		rule = model.ValidationRule{Type: model.RuleAllowedValues, AllowedValues: rules.CriticalityLevels}
	case "asset_types":
		rule = model.ValidationRule{Type: model.RuleAllowedValues, AllowedValues: rules.AssetTypes}
	case "environments":
		rule = model.ValidationRule{Type: model.RuleAllowedValues, AllowedValues: rules.Environments}
	default:
		pattern, ok := rules.Patterns[name]
		if !ok {
			// unknown identifier: reported by loader validation, skipped here
			return nil
		}
		re, err := compile(pattern)
		if err != nil {
			return err
		}
		rule = model.ValidationRule{Type: model.RuleRegex, Pattern: re}
	}

	l.validationRules[field] = rule
	return nil
}

// FindExactMatch probes the exact-match table with a normalized header.
func (l *Lookup) FindExactMatch(header string) (model.MappingEntry, bool) {
	entry, ok := l.exactMatches[NormalizeKey(header)]
	return entry, ok
}

// ResolveCandidate maps a matched alias string back to its candidate.
// When several candidates share the alias across source types the first
// registered one wins; callers needing a narrower pool should scope by
// source type instead.
func (l *Lookup) ResolveCandidate(originalName string, scope model.SourceType) (model.FuzzyCandidate, bool) {
	for _, c := range l.candidates {
		if c.OriginalName != originalName {
			continue
		}
		if scope != "" && c.SourceType != scope {
			continue
		}
		return c, true
	}
	return model.FuzzyCandidate{}, false
}

// Targets returns the candidate alias pool, optionally scoped to one
// source type. The returned slice must be treated as read-only.
func (l *Lookup) Targets(scope model.SourceType) []string {
	if scope == "" {
		return l.targets
	}
	return l.targetsByType[scope]
}

// Rule returns the compiled validation rule for a target field.
func (l *Lookup) Rule(field string) (model.ValidationRule, bool) {
	r, ok := l.validationRules[field]
	return r, ok
}

// RequiredFields returns the required target fields in sorted order.
func (l *Lookup) RequiredFields() []string {
	out := make([]string, 0, len(l.requiredFields))
	for f := range l.requiredFields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
