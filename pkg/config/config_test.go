package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
workers: 8
store:
  driver: file
  samples_file: ./bikes.jsonl
graph:
  osm_file: ./hessen.osm.pbf
  cache_file: ./graph_{city}.bz2
filter:
  max_jitter_duration: 90s
interpolation:
  mode: distance
export:
  folder: ./out
  formats: [csv]
city:
  center_lat: 50.11
  center_lon: 8.68
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, 90*time.Second, cfg.Filter.MaxJitterDuration)
	assert.Equal(t, 60.0, cfg.Filter.MinDisplacementMeters)
	assert.Equal(t, 10000.0, cfg.Graph.RadiusMeters)
	assert.Equal(t, "distance", cfg.Interpolation.Mode)
	assert.Equal(t, []string{"csv"}, cfg.Export.Formats)
	assert.True(t, cfg.City.HasCenter)
	assert.Equal(t, "./graph_467.bz2", cfg.GraphCacheFile(467))
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: postgres
`)
	t.Setenv("TRIPS_STORE_DSN", "postgres://bikes@localhost:5432/nextbike")
	t.Setenv("TRIPS_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://bikes@localhost:5432/nextbike", cfg.Store.DSN)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 62*time.Second, cfg.Filter.MaxJitterDuration)
	assert.Equal(t, []string{"csv", "json"}, cfg.Export.Formats)
	assert.False(t, cfg.City.HasCenter)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "postgres without dsn", content: "store:\n  driver: postgres\n"},
		{name: "file driver without file", content: "store:\n  driver: file\n"},
		{name: "unknown driver", content: "store:\n  driver: mysql\n  dsn: x\n"},
		{name: "unknown interpolation mode", content: "store:\n  dsn: x\ninterpolation:\n  mode: speed\n"},
		{name: "unknown export format", content: "store:\n  dsn: x\nexport:\n  formats: [parquet]\n"},
		{name: "zero workers", content: "store:\n  dsn: x\nworkers: 0\n"},
		{name: "negative jitter duration", content: "store:\n  dsn: x\nfilter:\n  max_jitter_duration: -1s\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOverridesBeforeValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfig(t, "store:\n  driver: postgres\n")

	cfg, err := Load(path, func(cfg *Config) {
		cfg.Store.Driver = "file"
		cfg.Store.SamplesFile = "./bikes.jsonl"
	})
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Driver)
}
