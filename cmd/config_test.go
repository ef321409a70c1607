package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_DefaultsFileMatchesBuiltInPlant(t *testing.T) {
	path := "../defaults.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("defaults.yaml not found, skipping integration test")
	}

	// GIVEN the shipped defaults.yaml
	// WHEN it is loaded strictly
	cfg, err := loadConfig(path)

	// THEN it describes exactly the built-in reference plant
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 184320, cfg.Space().Len())
}

func TestLoadConfig_UnknownFieldIsRejected(t *testing.T) {
	// GIVEN a config with a misspelled key
	path := writeConfig(t, "version: \"1\"\nfeed:\n  galons_per_day: 10\n")

	// WHEN loaded
	_, err := loadConfig(path)

	// THEN strict parsing reports it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "galons_per_day")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	grade := 2
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"fixed valve grade", func(c *Config) { c.Layout.FixedValveGrade = &grade }, ""},
		{"four pipe lengths", func(c *Config) { c.Layout.PipeLengths = c.Layout.PipeLengths[:4] }, "pipe_lengths"},
		{"zero pipe length", func(c *Config) { c.Layout.PipeLengths = []float64{1, 1, 0, 1, 1} }, "pipe_lengths[2]"},
		{"zero pump rating", func(c *Config) { c.Layout.PumpRating = 0 }, "pump_rating"},
		{"no diameters", func(c *Config) { c.Sweep.Diameters = nil }, "diameters"},
		{"negative diameter", func(c *Config) { c.Sweep.Diameters = []float64{-0.1} }, "diameter"},
		{"unknown policy", func(c *Config) { c.Sweep.ErrorPolicy = "retry" }, "retry"},
		{"negative workers", func(c *Config) { c.Sweep.Workers = -1 }, "workers"},
		{"fractions", func(c *Config) { c.Feed.WaterFraction = 0.7 }, "feed"},
		{"empty catalog stage", func(c *Config) { c.Catalog.Dehydrators = nil }, "dehydration"},
		{"gravity", func(c *Config) { c.Constants.Gravity = 0 }, "gravity"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLayoutConfig_FixedValveGradeIsCopied(t *testing.T) {
	grade := 2
	cfg := DefaultConfig()
	cfg.Layout.FixedValveGrade = &grade
	layout, err := cfg.Layout.toLayout()
	require.NoError(t, err)
	grade = 3
	require.NotNil(t, layout.FixedValveGrade)
	assert.Equal(t, 2, *layout.FixedValveGrade)
}
