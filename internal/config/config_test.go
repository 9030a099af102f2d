package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8083, cfg.Port)
	assert.Equal(t, "127.0.0.1:8083", cfg.Addr())
	assert.Equal(t, 64, cfg.MaxUploadMB)
	assert.Equal(t, 0.7, cfg.MinConfidence)
	assert.Equal(t, "", cfg.MappingConfig)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MIN_CONFIDENCE", "0.85")
	t.Setenv("MAPPING_CONFIG", "/etc/colmap/mapping.json")

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 0.85, cfg.MinConfidence)
	assert.Equal(t, "/etc/colmap/mapping.json", cfg.MappingConfig)
}

func TestLoadRejectsBadConfidence(t *testing.T) {
	t.Setenv("MIN_CONFIDENCE", "2.5")
	assert.Equal(t, 0.7, Load().MinConfidence)

	t.Setenv("MIN_CONFIDENCE", "not a number")
	assert.Equal(t, 0.7, Load().MinConfidence)
}
