// Package loader reads mapping configurations from JSON files and
// performs structural validation before the lookup structures are built.
package loader

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"colmap-service/internal/mapping/model"
)

//go:embed defaults.json
var defaultsJSON []byte

// knownValidations are the identifiers a column spec may name in its
// "validation" key. Everything else is reported as a warning and
// ignored at lookup-build time.
var knownValidations = map[string]struct{}{
	"ip_address":         {},
	"mac_address":        {},
	"boolean":            {},
	"date":               {},
	"control_id":         {},
	"unique_identifier":  {},
	"severity_levels":    {},
	"status_values":      {},
	"criticality_levels": {},
	"asset_types":        {},
	"environments":       {},
}

// Load reads a mapping configuration from path. An empty path selects
// the embedded FedRAMP-shaped default configuration.
func Load(path string) (*model.Configuration, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping configuration: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse mapping configuration %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("mapping configuration loaded")
	return cfg, nil
}

// LoadDefault parses the embedded default configuration.
func LoadDefault() (*model.Configuration, error) {
	cfg, err := parse(defaultsJSON)
	if err != nil {
		return nil, fmt.Errorf("parse embedded mapping configuration: %w", err)
	}
	return cfg, nil
}

func parse(data []byte) (*model.Configuration, error) {
	var cfg model.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for structural problems and returns
// them as human-readable warnings. Warnings never fail the load; a
// configuration with gaps still maps whatever it can.
func Validate(cfg *model.Configuration) []string {
	var warnings []string

	for _, kind := range cfg.Kinds() {
		if kind.Mappings == nil {
			continue
		}
		for key, spec := range kind.Mappings.Columns {
			if len(spec.ColumnNames) == 0 {
				warnings = append(warnings, fmt.Sprintf("%s mapping %q has no column names", kind.Type, key))
			}
			if spec.Field == "" {
				warnings = append(warnings, fmt.Sprintf("%s mapping %q has an empty target field", kind.Type, key))
			}
			if spec.Validation != "" {
				if _, ok := knownValidations[spec.Validation]; !ok {
					warnings = append(warnings, fmt.Sprintf("%s mapping %q names unknown validation %q", kind.Type, key, spec.Validation))
				}
			}
		}
	}

	if cfg.SspSections != nil {
		for key, spec := range cfg.SspSections.Sections {
			if len(spec.Keywords) == 0 {
				warnings = append(warnings, fmt.Sprintf("ssp section %q has no keywords", key))
			}
			if spec.Field == "" {
				warnings = append(warnings, fmt.Sprintf("ssp section %q has an empty target field", key))
			}
		}
	}

	return warnings
}
