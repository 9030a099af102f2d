// Package model holds the column-mapping data model: configuration
// structures loaded from JSON, the lookup entries derived from them, and
// the mapping results handed to downstream consumers.
package model

import "regexp"

// SourceType identifies which document kind a mapping entry came from.
type SourceType string

const (
	SourceInventory  SourceType = "inventory"
	SourcePoam       SourceType = "poam"
	SourceSspSection SourceType = "ssp_section"
	SourceControl    SourceType = "control"
	SourceDocument   SourceType = "document"
)

// Description returns the human-readable name of the source type.
func (s SourceType) Description() string {
	switch s {
	case SourceInventory:
		return "FedRAMP Integrated Inventory Workbook"
	case SourcePoam:
		return "Plan of Action and Milestones"
	case SourceSspSection:
		return "System Security Plan Section"
	case SourceControl:
		return "Control Framework Mapping"
	case SourceDocument:
		return "Document Structure Definition"
	default:
		return string(s)
	}
}

// RuleType is the kind of check a validation rule performs.
type RuleType string

const (
	RuleRegex            RuleType = "regex"
	RuleAllowedValues    RuleType = "allowed_values"
	RuleBoolean          RuleType = "boolean"
	RuleIPAddress        RuleType = "ip_address"
	RuleMACAddress       RuleType = "mac_address"
	RuleDate             RuleType = "date"
	RuleControlID        RuleType = "control_id"
	RuleUniqueIdentifier RuleType = "unique_identifier"
)

// MappingEntry is the exact-match table value: everything needed to emit
// a MappingResult once a header hits.
type MappingEntry struct {
	TargetField string
	SourceType  SourceType
	Required    bool
	Validation  string
	DataType    string
}

// FuzzyCandidate is one known alias pointing at a target field. A single
// logical field usually owns several candidates, one per alias.
// NormalizedName is always derivable from OriginalName by the same
// normalization used for exact-match keys, so the exact and fuzzy pools
// can never disagree about their own entries.
type FuzzyCandidate struct {
	OriginalName   string
	NormalizedName string
	TargetField    string
	SourceType     SourceType
	Required       bool
}

// ValidationRule is a compiled, ready-to-apply value check.
type ValidationRule struct {
	Type          RuleType
	Pattern       *regexp.Regexp
	AllowedValues []string
}

// MappingResult is one resolved header.
type MappingResult struct {
	SourceColumn string     `json:"source_column"`
	TargetField  string     `json:"target_field"`
	Confidence   float64    `json:"confidence"`
	SourceType   SourceType `json:"source_type"`
	Required     bool       `json:"required"`
	Validation   string     `json:"validation,omitempty"`
	ExactMatch   bool       `json:"exact_match"`
}

// Statistics is a diagnostics snapshot of the lookup structures. It is
// informational only, never used for control flow.
type Statistics struct {
	ExactMatches           int                `json:"exact_matches"`
	FuzzyCandidates        int                `json:"fuzzy_candidates"`
	ValidationRules        int                `json:"validation_rules"`
	RequiredFields         int                `json:"required_fields"`
	SourceTypeDistribution map[SourceType]int `json:"source_type_distribution"`
	FuzzyCacheSize         int                `json:"fuzzy_cache_size"`
	FuzzyCacheCapacity     int                `json:"fuzzy_cache_capacity"`
}

// Configuration is the full mapping configuration as loaded from JSON.
type Configuration struct {
	Inventory       *DocumentMappings `json:"inventory,omitempty"`
	Poam            *DocumentMappings `json:"poam,omitempty"`
	SspSections     *SectionMappings  `json:"ssp_sections,omitempty"`
	Controls        *DocumentMappings `json:"controls,omitempty"`
	Documents       *DocumentMappings `json:"documents,omitempty"`
	ValidationRules ValidationRuleSet `json:"validation_rules"`
}

// DocumentMappings maps logical column keys to their specs for one
// document kind.
type DocumentMappings struct {
	Description string                `json:"description,omitempty"`
	Version     string                `json:"version,omitempty"`
	Columns     map[string]ColumnSpec `json:"columns"`
}

// ColumnSpec describes one target field: which literal headers map to
// it, whether it must be present, and which validation rule its values
// go through.
type ColumnSpec struct {
	ColumnNames []string `json:"column_names"`
	Field       string   `json:"field"`
	Required    bool     `json:"required"`
	Validation  string   `json:"validation,omitempty"`
	DataType    string   `json:"data_type,omitempty"`
}

// SectionMappings maps SSP section keys to their specs. Keywords play
// the role column names play for spreadsheets.
type SectionMappings struct {
	Description string                 `json:"description,omitempty"`
	Version     string                 `json:"version,omitempty"`
	Sections    map[string]SectionSpec `json:"sections"`
}

// SectionSpec describes one SSP section target.
type SectionSpec struct {
	Keywords []string `json:"keywords"`
	Field    string   `json:"field"`
	Required bool     `json:"required"`
}

// ValidationRuleSet supplies the regex patterns and enumerations the
// named validation identifiers resolve against.
type ValidationRuleSet struct {
	IPAddressPattern  string            `json:"ip_address_pattern,omitempty"`
	MACAddressPattern string            `json:"mac_address_pattern,omitempty"`
	ControlIDPattern  string            `json:"control_id_pattern,omitempty"`
	BooleanValues     []string          `json:"boolean_values,omitempty"`
	SeverityLevels    []string          `json:"severity_levels,omitempty"`
	StatusValues      []string          `json:"status_values,omitempty"`
	CriticalityLevels []string          `json:"criticality_levels,omitempty"`
	AssetTypes        []string          `json:"asset_types,omitempty"`
	Environments      []string          `json:"environments,omitempty"`
	Patterns          map[string]string `json:"patterns,omitempty"`
}

// Kinds returns the configured document kinds in their fixed processing
// order. Registration order decides which entry wins when two kinds
// claim the same alias, so the order must be stable.
func (c *Configuration) Kinds() []struct {
	Type     SourceType
	Mappings *DocumentMappings
} {
	return []struct {
		Type     SourceType
		Mappings *DocumentMappings
	}{
		{SourceInventory, c.Inventory},
		{SourcePoam, c.Poam},
		{SourceControl, c.Controls},
		{SourceDocument, c.Documents},
	}
}
