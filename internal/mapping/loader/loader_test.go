package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colmap-service/internal/mapping/model"
)

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	require.NotNil(t, cfg.Inventory)
	require.NotNil(t, cfg.Poam)
	require.NotNil(t, cfg.SspSections)

	asset, ok := cfg.Inventory.Columns["asset_id"]
	require.True(t, ok)
	assert.Equal(t, "uuid", asset.Field)
	assert.True(t, asset.Required)
	assert.Contains(t, asset.ColumnNames, "Unique Asset Identifier")

	assert.NotEmpty(t, cfg.ValidationRules.SeverityLevels)
	assert.NotEmpty(t, cfg.ValidationRules.BooleanValues)

	assert.Empty(t, Validate(cfg))
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, cfg.Inventory)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	body := `{
		"inventory": {
			"columns": {
				"asset_id": {"column_names": ["Asset ID"], "field": "uuid", "required": true}
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Inventory)
	assert.Equal(t, "uuid", cfg.Inventory.Columns["asset_id"].Field)
	assert.Nil(t, cfg.Poam)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateWarnings(t *testing.T) {
	cfg := &model.Configuration{
		Inventory: &model.DocumentMappings{Columns: map[string]model.ColumnSpec{
			"no_names":  {Field: "something"},
			"no_field":  {ColumnNames: []string{"Header"}},
			"bad_check": {ColumnNames: []string{"Header"}, Field: "f", Validation: "telepathy"},
			"all_good":  {ColumnNames: []string{"Header"}, Field: "f2", Validation: "boolean"},
		}},
		SspSections: &model.SectionMappings{Sections: map[string]model.SectionSpec{
			"empty_section": {},
		}},
	}

	warnings := Validate(cfg)
	assert.Len(t, warnings, 5)

	joined := ""
	for _, w := range warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "no column names")
	assert.Contains(t, joined, "empty target field")
	assert.Contains(t, joined, `unknown validation "telepathy"`)
	assert.Contains(t, joined, "has no keywords")
}
